package activation

import "context"

// StatusProvider abstracts activation status lookups so the registration
// service can be tested with an in-memory implementation.
type StatusProvider interface {
	// GetStatus returns the current status of an activation. Returns
	// ErrActivationNotFound when the activation does not exist.
	GetStatus(ctx context.Context, activationID string) (*StatusInfo, error)
}
