package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/arenaops/tournament-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stores mirroring the Mongo and Redis implementations.
// ---------------------------------------------------------------------------

type memIdentities struct {
	mu        sync.Mutex
	byID      map[string]ports.IdentityRecord
	updateErr error
}

func newMemIdentities() *memIdentities {
	return &memIdentities{byID: make(map[string]ports.IdentityRecord)}
}

func (m *memIdentities) Create(_ context.Context, rec *ports.IdentityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if strings.EqualFold(r.Email, rec.Email) {
			return ports.ErrDuplicateKey
		}
	}
	m.byID[rec.ID] = *rec
	return nil
}

func (m *memIdentities) FindByEmail(_ context.Context, email string) (*ports.IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if strings.EqualFold(r.Email, email) {
			clone := r
			return &clone, nil
		}
	}
	return nil, ports.ErrRecordNotFound
}

func (m *memIdentities) FindByID(_ context.Context, id string) (*ports.IdentityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, ports.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memIdentities) UpdateEmail(_ context.Context, id, email string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	r, ok := m.byID[id]
	if !ok {
		return ports.ErrRecordNotFound
	}
	r.Email = email
	r.EmailVerified = verified
	r.UpdatedAt = time.Now().UTC()
	m.byID[id] = r
	return nil
}

func (m *memIdentities) SetEmailVerified(_ context.Context, id string, verified bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return ports.ErrRecordNotFound
	}
	r.EmailVerified = verified
	m.byID[id] = r
	return nil
}

func (m *memIdentities) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memProfiles struct {
	mu        sync.Mutex
	byID      map[string]ports.ProfileRecord
	createErr error
	updateErr error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: make(map[string]ports.ProfileRecord)}
}

func (m *memProfiles) Create(_ context.Context, rec *ports.ProfileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[rec.ID] = *rec
	return nil
}

func (m *memProfiles) FindByID(_ context.Context, id string) (*ports.ProfileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, ports.ErrRecordNotFound
	}
	return &r, nil
}

func (m *memProfiles) Update(_ context.Context, id string, patch ports.ProfilePatch) (*ports.ProfileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	r, ok := m.byID[id]
	if !ok {
		return nil, ports.ErrRecordNotFound
	}
	if patch.Email != nil {
		r.Email = *patch.Email
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Role != nil {
		r.Role = *patch.Role
	}
	m.byID[id] = r
	return &r, nil
}

func (m *memProfiles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type memRefresh struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newMemRefresh() *memRefresh {
	return &memRefresh{tokens: make(map[string]string)}
}

func (m *memRefresh) Save(_ context.Context, hash, userID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[hash] = userID
	return nil
}

func (m *memRefresh) Consume(_ context.Context, hash string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.tokens[hash]
	if !ok {
		return "", ports.ErrRecordNotFound
	}
	delete(m.tokens, hash)
	return userID, nil
}

func (m *memRefresh) Delete(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, hash)
	return nil
}

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemRevocations() *memRevocations {
	return &memRevocations{revoked: make(map[string]time.Time)}
}

func (m *memRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = until
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	until, ok := m.revoked[id]
	return ok && time.Now().Before(until), nil
}

var errStoreDown = errors.New("connection refused")
