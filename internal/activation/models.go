// Package activation provides the client for the activation status service,
// the identity provider that owns user-device activations.
package activation

import "errors"

// ErrActivationNotFound is returned when the activation does not exist.
var ErrActivationNotFound = errors.New("activation not found")

// Status represents the lifecycle status of an activation.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusRemoved  Status = "REMOVED"
	StatusUnknown  Status = "UNKNOWN"
)

// StatusInfo is the oracle's view of one activation.
type StatusInfo struct {
	ActivationID string
	Status       Status
	UserID       string
}
