package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Memory is an in-process record store with the same contract as Repository.
// It backs unit tests and local runs without PostgreSQL.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]model.User
	assemblies    map[string]model.Assembly
	registrations map[string]model.Registration
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]model.User),
		assemblies:    make(map[string]model.Assembly),
		registrations: make(map[string]model.Registration),
	}
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// CreateUser stores a user.
func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return ErrUserExists
	}
	m.users[u.ID] = *u
	return nil
}

// GetUserByID returns a user.
func (m *Memory) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (m *Memory) ListUsers(context.Context) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateAssembly stores an assembly and fills in the owner's display name.
func (m *Memory) CreateAssembly(_ context.Context, a *model.Assembly) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := cloneAssembly(*a)
	stored.OwnerName = ""
	m.assemblies[a.ID] = stored
	a.OwnerName = m.users[a.UserID].Name
	return nil
}

// GetAssemblyByID returns an assembly.
func (m *Memory) GetAssemblyByID(_ context.Context, id string) (*model.Assembly, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assemblies[id]
	if !ok {
		return nil, ErrAssemblyNotFound
	}
	return m.withOwner(a), nil
}

// ListAssemblies returns assemblies newest first.
func (m *Memory) ListAssemblies(_ context.Context, filter model.AssemblyFilter) ([]*model.Assembly, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Assembly, 0, len(m.assemblies))
	for _, a := range m.assemblies {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		out = append(out, m.withOwner(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateAssembly overwrites mutable fields; owner and created_at are kept.
func (m *Memory) UpdateAssembly(_ context.Context, a *model.Assembly) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.assemblies[a.ID]
	if !ok {
		return ErrAssemblyNotFound
	}
	next := cloneAssembly(*a)
	next.UserID = cur.UserID
	next.CreatedAt = cur.CreatedAt
	next.OwnerName = ""
	m.assemblies[a.ID] = next
	return nil
}

// DeleteAssembly removes an assembly.
func (m *Memory) DeleteAssembly(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assemblies[id]; !ok {
		return ErrAssemblyNotFound
	}
	delete(m.assemblies, id)
	return nil
}

// CreateRegistration stores a registration.
func (m *Memory) CreateRegistration(_ context.Context, r *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[r.ID] = *r
	return nil
}

// GetRegistrationByID returns a registration.
func (m *Memory) GetRegistrationByID(_ context.Context, id string) (*model.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.registrations[id]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	return &r, nil
}

// ListRegistrations returns registrations newest first.
func (m *Memory) ListRegistrations(_ context.Context, filter model.RegistrationFilter) ([]*model.Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Registration, 0, len(m.registrations))
	for _, r := range m.registrations {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateRegistration overwrites mutable fields; owner and created_at are kept.
func (m *Memory) UpdateRegistration(_ context.Context, r *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.registrations[r.ID]
	if !ok {
		return ErrRegistrationNotFound
	}
	next := *r
	next.UserID = cur.UserID
	next.CreatedAt = cur.CreatedAt
	m.registrations[r.ID] = next
	return nil
}

// DeleteRegistration removes a registration.
func (m *Memory) DeleteRegistration(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.registrations[id]; !ok {
		return ErrRegistrationNotFound
	}
	delete(m.registrations, id)
	return nil
}

// RegistrationCount returns the number of stored registrations.
func (m *Memory) RegistrationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.registrations)
}

// withOwner copies a and joins the owner's display name. Caller holds mu.
func (m *Memory) withOwner(a model.Assembly) *model.Assembly {
	out := cloneAssembly(a)
	out.OwnerName = m.users[a.UserID].Name
	return &out
}

func cloneAssembly(a model.Assembly) model.Assembly {
	if a.Boundary != nil {
		ring := make([]model.LngLat, len(a.Boundary.Ring))
		copy(ring, a.Boundary.Ring)
		a.Boundary = &model.Polygon{Ring: ring}
	}
	return a
}
