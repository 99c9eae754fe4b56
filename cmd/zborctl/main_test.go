package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/repository"
)

const testKey = "zborctl-test-signing-key-0123456789abcdef"

type fakeMigrator struct {
	version int64
	calls   []string
	err     error
	closed  bool
}

func (f *fakeMigrator) Up(context.Context) error {
	f.calls = append(f.calls, "up")
	f.version = 3
	return f.err
}

func (f *fakeMigrator) Down(context.Context) error {
	f.calls = append(f.calls, "down")
	f.version--
	return f.err
}

func (f *fakeMigrator) Status(context.Context) error {
	f.calls = append(f.calls, "status")
	return f.err
}

func (f *fakeMigrator) Version(context.Context) (int64, error) { return f.version, nil }
func (f *fakeMigrator) Close() error                           { f.closed = true; return nil }

func testApp(store *repository.Memory, m *fakeMigrator) (*app, *bytes.Buffer) {
	out := &bytes.Buffer{}
	a := newApp(out)
	a.openUsers = func(context.Context, string) (userStore, func(), error) {
		return store, func() {}, nil
	}
	a.openMigrator = func(string) (migrator, error) { return m, nil }
	return a, out
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestKeysGenerate(t *testing.T) {
	a, out := testApp(nil, nil)

	require.NoError(t, run(t, a, "keys", "generate"))

	key := strings.TrimSpace(out.String())
	assert.NoError(t, auth.ValidateSigningKey(key))
}

func TestTokenIssue(t *testing.T) {
	a, out := testApp(nil, nil)

	require.NoError(t, run(t, a, "token", "issue",
		"--user", "user-a", "--name", "Ana",
		"--signing-key", testKey, "--issuer", "zbor", "--audience", "api", "--ttl", "1h"))

	id, err := auth.NewTokens(testKey, "zbor", "api").Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "user-a", id.UserID)
	assert.Equal(t, "Ana", id.Name)
}

func TestTokenIssue_Errors(t *testing.T) {
	a, _ := testApp(nil, nil)

	assert.ErrorContains(t, run(t, a, "token", "issue", "--signing-key", testKey), "--user")
	assert.ErrorIs(t, run(t, a, "token", "issue", "--user", "u", "--signing-key", "short"), auth.ErrWeakSigningKey)
}

func TestUsersAddAndList(t *testing.T) {
	store := repository.NewMemory()
	a, out := testApp(store, nil)

	require.NoError(t, run(t, a, "--database-url", "postgres://x", "users", "add", "--id", "user-a", "--name", " Ana "))
	var created model.User
	require.NoError(t, json.Unmarshal(out.Bytes(), &created))
	assert.Equal(t, "user-a", created.ID)
	assert.Equal(t, "Ana", created.Name)

	out.Reset()
	require.NoError(t, run(t, a, "--database-url", "postgres://x", "users", "add", "--name", "Bojan"))

	out.Reset()
	require.NoError(t, run(t, a, "--database-url", "postgres://x", "users", "list"))
	var users []model.User
	require.NoError(t, json.Unmarshal(out.Bytes(), &users))
	assert.Len(t, users, 2)

	err := run(t, a, "--database-url", "postgres://x", "users", "add", "--id", "user-a", "--name", "Again")
	assert.ErrorIs(t, err, repository.ErrUserExists)
}

func TestUsersAdd_RequiresNameAndDatabase(t *testing.T) {
	a, _ := testApp(repository.NewMemory(), nil)
	a.databaseURL = ""

	assert.ErrorContains(t, run(t, a, "users", "add", "--database-url", "postgres://x"), "--name")
	assert.ErrorIs(t, run(t, a, "--database-url", "", "users", "list"), errNoDatabaseURL)
}

func TestMigrate(t *testing.T) {
	m := &fakeMigrator{}
	a, out := testApp(nil, m)

	require.NoError(t, run(t, a, "--database-url", "postgres://x", "migrate", "up"))
	assert.Equal(t, "schema version 3\n", out.String())
	assert.True(t, m.closed)

	out.Reset()
	require.NoError(t, run(t, a, "--database-url", "postgres://x", "migrate", "down"))
	assert.Equal(t, "schema version 2\n", out.String())

	require.NoError(t, run(t, a, "--database-url", "postgres://x", "migrate", "status"))
	assert.Equal(t, []string{"up", "down", "status"}, m.calls)
}

func TestMigrate_SanitizesErrors(t *testing.T) {
	dsn := "postgres://zbor:s3cret@db/zbor"
	m := &fakeMigrator{err: errors.New("dial " + dsn + ": refused")}
	a, _ := testApp(nil, m)

	err := run(t, a, "--database-url", dsn, "migrate", "up")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "s3cret")
}
