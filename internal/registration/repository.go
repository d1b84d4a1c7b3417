package registration

import "context"

// Repository defines the interface for device registration persistence.
//
// The find methods return every matching row; the reconciliation service
// decides how many rows each lookup level is allowed to yield.
type Repository interface {
	// FindByActivationAndToken retrieves registrations matching both the
	// activation ID and the push token.
	FindByActivationAndToken(ctx context.Context, activationID, token string) ([]*Registration, error)

	// FindByActivation retrieves registrations bound to the activation ID.
	FindByActivation(ctx context.Context, activationID string) ([]*Registration, error)

	// FindByAppAndToken retrieves registrations matching the application ID
	// and push token.
	FindByAppAndToken(ctx context.Context, appID, token string) ([]*Registration, error)

	// Save inserts or updates a registration row by its ID.
	Save(ctx context.Context, reg *Registration) error

	// Delete removes a single registration row. Deleting a missing row is
	// not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByAppAndToken removes every row matching the application ID and
	// push token, returning the number of rows removed.
	DeleteByAppAndToken(ctx context.Context, appID, token string) (int, error)
}
