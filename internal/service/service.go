// Package service provides business logic for the application.
//
// Services receive the caller's user id explicitly; an empty id means the
// caller is anonymous. Every mutation checks, in order, that the caller is
// authenticated, that the record exists and that the caller owns it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Service errors.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("record not found")
	ErrMissingID    = errors.New("id is required")
	ErrValidation   = errors.New("validation failed")
)

// AssemblyStore persists assemblies.
type AssemblyStore interface {
	CreateAssembly(ctx context.Context, a *model.Assembly) error
	GetAssemblyByID(ctx context.Context, id string) (*model.Assembly, error)
	ListAssemblies(ctx context.Context, filter model.AssemblyFilter) ([]*model.Assembly, error)
	UpdateAssembly(ctx context.Context, a *model.Assembly) error
	DeleteAssembly(ctx context.Context, id string) error
}

// RegistrationStore persists registrations.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, r *model.Registration) error
	GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error)
	ListRegistrations(ctx context.Context, filter model.RegistrationFilter) ([]*model.Registration, error)
	UpdateRegistration(ctx context.Context, r *model.Registration) error
	DeleteRegistration(ctx context.Context, id string) error
}

func newID() string {
	return ulid.Make().String()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// requireText trims s and checks it is non-empty and at most max runes.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalid("%s must be at most %d characters", field, max)
	}
	return s, nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func clockOrDefault(now func() time.Time) func() time.Time {
	if now == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return now
}

// storedTime converts t to UTC at the microsecond precision of TIMESTAMPTZ.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
