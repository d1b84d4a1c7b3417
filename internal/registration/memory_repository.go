package registration

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use the PostgreSQL implementation.
type InMemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Registration // keyed by registration ID
}

// NewInMemoryRepository creates a new in-memory registration repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rows: make(map[string]*Registration),
	}
}

// FindByActivationAndToken retrieves registrations matching both the
// activation ID and the push token.
func (r *InMemoryRepository) FindByActivationAndToken(_ context.Context, activationID, token string) ([]*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Registration
	for _, reg := range r.rows {
		if reg.ActivationID != nil && *reg.ActivationID == activationID && reg.PushToken == token {
			matches = append(matches, copyRegistration(reg))
		}
	}
	return matches, nil
}

// FindByActivation retrieves registrations bound to the activation ID.
func (r *InMemoryRepository) FindByActivation(_ context.Context, activationID string) ([]*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Registration
	for _, reg := range r.rows {
		if reg.ActivationID != nil && *reg.ActivationID == activationID {
			matches = append(matches, copyRegistration(reg))
		}
	}
	return matches, nil
}

// FindByAppAndToken retrieves registrations matching the application ID and
// push token.
func (r *InMemoryRepository) FindByAppAndToken(_ context.Context, appID, token string) ([]*Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Registration
	for _, reg := range r.rows {
		if reg.AppID == appID && reg.PushToken == token {
			matches = append(matches, copyRegistration(reg))
		}
	}
	return matches, nil
}

// Save inserts or updates a registration row by its ID.
func (r *InMemoryRepository) Save(_ context.Context, reg *Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[reg.ID] = copyRegistration(reg)
	return nil
}

// Delete removes a single registration row.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rows, id)
	return nil
}

// DeleteByAppAndToken removes every row matching the application ID and push
// token.
func (r *InMemoryRepository) DeleteByAppAndToken(_ context.Context, appID, token string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, reg := range r.rows {
		if reg.AppID == appID && reg.PushToken == token {
			delete(r.rows, id)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of stored rows.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// copyRegistration creates a deep copy of a registration.
func copyRegistration(reg *Registration) *Registration {
	if reg == nil {
		return nil
	}

	regCopy := &Registration{
		ID:               reg.ID,
		AppID:            reg.AppID,
		PushToken:        reg.PushToken,
		Platform:         reg.Platform,
		Active:           reg.Active,
		LastRegisteredAt: reg.LastRegisteredAt,
	}

	if reg.ActivationID != nil {
		val := *reg.ActivationID
		regCopy.ActivationID = &val
	}
	if reg.UserID != nil {
		val := *reg.UserID
		regCopy.UserID = &val
	}

	return regCopy
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
