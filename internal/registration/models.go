// Package registration provides push device registration and the
// reconciliation rules that bind push tokens to activations.
package registration

import (
	"errors"
	"time"
)

// Reconciliation errors.
var (
	// ErrConsistencyViolation indicates that a lookup which must return at
	// most one row returned several. The uniqueness index on
	// (activation_id, push_token) is missing or broken; duplicate rows must
	// be removed manually.
	ErrConsistencyViolation = errors.New("multiple device registrations found for activation, database uniqueness index is missing or broken")

	// ErrAmbiguousRegistration indicates that a push token is bound to
	// several activations, which a single-activation registration cannot
	// resolve. Callers should use the batch registration endpoint.
	ErrAmbiguousRegistration = errors.New("multiple device registrations found for push token, use the batch registration endpoint")

	// ErrMultiActivationDisabled is returned when batch registration is
	// invoked while the multi_activation_registration flag is off.
	ErrMultiActivationDisabled = errors.New("registration of multiple associated activations per device is not enabled")

	// ErrRegistrationFailed aggregates per-activation failures of a batch
	// registration. Successful items are not rolled back; callers may retry
	// to fix the remaining ones.
	ErrRegistrationFailed = errors.New("device registration failed for one or more activations")
)

// Platform represents a mobile push platform.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformHuawei  Platform = "huawei"
)

// ValidPlatform reports whether p is a known platform value.
func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformHuawei:
		return true
	default:
		return false
	}
}

// Registration represents one stored device registration row.
//
// ActivationID and UserID are optional: a row created for an activation the
// oracle reported as removed carries no binding. UserID and Active are
// cached copies of oracle state and may be stale until the next
// reconciliation or status sync.
type Registration struct {
	ID               string
	AppID            string
	PushToken        string
	Platform         Platform
	ActivationID     *string
	UserID           *string
	Active           bool
	LastRegisteredAt time.Time
}

// TokenLast4 returns the last 4 characters of the push token for display
// purposes.
func (r *Registration) TokenLast4() string {
	if len(r.PushToken) < 4 {
		return r.PushToken
	}
	return r.PushToken[len(r.PushToken)-4:]
}
