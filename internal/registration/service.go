package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pushlane/pushlane/internal/activation"
	"github.com/pushlane/pushlane/internal/api/models"
	"github.com/pushlane/pushlane/internal/featureflags"
)

// ServiceConfig holds configuration for the registration service.
type ServiceConfig struct {
	Repository  Repository
	Activations activation.StatusProvider
	Flags       *featureflags.Service
	Logger      zerolog.Logger
}

// Service reconciles incoming registration intents against stored rows.
type Service struct {
	repo        Repository
	activations activation.StatusProvider
	flags       *featureflags.Service
	logger      zerolog.Logger
}

// NewService creates a new registration service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:        cfg.Repository,
		activations: cfg.Activations,
		flags:       cfg.Flags,
		logger:      cfg.Logger,
	}
}

// Register creates or updates the registration for a single activation.
//
// The target row is resolved by a three-level lookup, from most specific to
// least specific: (activation, token), (activation), (app, token). The first
// non-empty level wins. A multi-row result on the last level is a legitimate
// multi-activation shape this path cannot resolve and is rejected with
// ErrAmbiguousRegistration.
func (s *Service) Register(ctx context.Context, input *models.DeviceCreateRequest) (*Registration, error) {
	if fieldErrors := validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	regs, err := s.lookupRegistrations(ctx, input.AppID, input.ActivationID, input.Token)
	if err != nil {
		return nil, err
	}

	var reg *Registration
	switch {
	case len(regs) == 0:
		reg = s.newRegistration(input.AppID, input.Token)
	case len(regs) == 1:
		// An existing row was found by one of the lookup levels. Either the
		// same binding is re-registered, the token rotated for an existing
		// activation, or the token moved to a different activation.
		reg = regs[0]
	default:
		return nil, ErrAmbiguousRegistration
	}

	reg.AppID = input.AppID
	reg.PushToken = input.Token
	reg.LastRegisteredAt = time.Now()
	reg.Platform = Platform(input.Platform)
	if err := s.bindActivation(ctx, reg, input.ActivationID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, reg); err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}

	return reg, nil
}

// RegisterForActivations creates or updates registrations for every
// activation of one physical device token.
//
// Activations are processed strictly in the caller-supplied order. Row IDs
// claimed earlier in the batch are tracked so that two activations never
// collapse into the same row. Per-activation failures are collected, not
// propagated: every activation is attempted, successful writes stay
// committed, and the call fails with ErrRegistrationFailed if any item
// failed.
func (s *Service) RegisterForActivations(ctx context.Context, input *models.DeviceBatchCreateRequest) error {
	// The feature gate is checked before payload validation.
	if !s.flags.GetFlag(ctx, featureflags.FlagMultiActivationRegistration).BoolValue(false) {
		return ErrMultiActivationDisabled
	}
	if fieldErrors := validateBatchCreateInput(input); len(fieldErrors) > 0 {
		return &ValidationError{Errors: fieldErrors}
	}

	usedIDs := make(map[string]struct{}, len(input.ActivationIDs))
	failed := 0
	for _, activationID := range input.ActivationIDs {
		if err := s.registerOne(ctx, input, activationID, usedIDs); err != nil {
			s.logger.Error().
				Err(err).
				Str("app_id", input.AppID).
				Str("activation_id", activationID).
				Msg("batch device registration item failed")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d activations failed", ErrRegistrationFailed, failed, len(input.ActivationIDs))
	}
	return nil
}

// registerOne reconciles a single activation within a batch request.
func (s *Service) registerOne(ctx context.Context, input *models.DeviceBatchCreateRequest, activationID string, usedIDs map[string]struct{}) error {
	regs, err := s.lookupRegistrations(ctx, input.AppID, activationID, input.Token)
	if err != nil {
		return err
	}

	var reg *Registration
	switch {
	case len(regs) == 0:
		reg = s.newRegistration(input.AppID, input.Token)
	case len(regs) == 1:
		reg = regs[0]
		if _, claimed := usedIDs[reg.ID]; claimed {
			// The row has already been used for another activation within
			// this request. Create a new row instead of merging.
			reg = s.newRegistration(input.AppID, input.Token)
		}
	default:
		// The token is bound to several rows with no activation-qualified
		// history, so there is no principled mapping of old rows to new
		// activations. Delete them all and start clean.
		for _, stale := range regs {
			if err := s.repo.Delete(ctx, stale.ID); err != nil {
				return fmt.Errorf("delete ambiguous registration: %w", err)
			}
		}
		reg = s.newRegistration(input.AppID, input.Token)
	}
	usedIDs[reg.ID] = struct{}{}

	reg.AppID = input.AppID
	reg.PushToken = input.Token
	reg.LastRegisteredAt = time.Now()
	reg.Platform = Platform(input.Platform)
	if err := s.bindActivation(ctx, reg, activationID); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, reg); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

// UpdateStatus refreshes the active flag of every row bound to the
// activation from the oracle's current status. Returns the number of rows
// updated. More than one bound row violates the normal invariant but is
// tolerated here; all of them are refreshed.
func (s *Service) UpdateStatus(ctx context.Context, activationID string) (int, error) {
	if activationID == "" {
		return 0, &ValidationError{Errors: []models.FieldError{{Field: "activationId", Message: "is required"}}}
	}

	regs, err := s.repo.FindByActivation(ctx, activationID)
	if err != nil {
		return 0, fmt.Errorf("find registrations: %w", err)
	}
	if len(regs) == 0 {
		return 0, nil
	}

	active := false
	info, err := s.activations.GetStatus(ctx, activationID)
	if err != nil && !errors.Is(err, activation.ErrActivationNotFound) {
		return 0, fmt.Errorf("get activation status: %w", err)
	}
	if err == nil {
		active = info.Status == activation.StatusActive
	}

	updated := 0
	for _, reg := range regs {
		reg.Active = active
		if err := s.repo.Save(ctx, reg); err != nil {
			return updated, fmt.Errorf("save registration: %w", err)
		}
		updated++
	}
	return updated, nil
}

// Remove deletes every registration matching the application ID and push
// token. Zero matches is a successful no-op.
func (s *Service) Remove(ctx context.Context, appID, token string) (int, error) {
	var fieldErrors []models.FieldError
	if appID == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "appId", Message: "is required"})
	}
	if token == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "token", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return 0, &ValidationError{Errors: fieldErrors}
	}

	removed, err := s.repo.DeleteByAppAndToken(ctx, appID, token)
	if err != nil {
		return 0, fmt.Errorf("delete registrations: %w", err)
	}
	return removed, nil
}

// lookupRegistrations resolves candidate rows for a registration intent.
//
// Lookup levels, most exact first:
//  1. activation ID and push token
//  2. activation ID
//  3. application ID and push token
//
// Levels 1 and 2 must yield at most one row; more is a data-integrity fault
// the store's uniqueness index should have prevented. Level 3 may yield
// several rows, which the caller interprets.
func (s *Service) lookupRegistrations(ctx context.Context, appID, activationID, token string) ([]*Registration, error) {
	regs, err := s.repo.FindByActivationAndToken(ctx, activationID, token)
	if err != nil {
		return nil, fmt.Errorf("lookup by activation and token: %w", err)
	}
	if len(regs) > 0 {
		if len(regs) != 1 {
			return nil, ErrConsistencyViolation
		}
		return regs, nil
	}

	regs, err = s.repo.FindByActivation(ctx, activationID)
	if err != nil {
		return nil, fmt.Errorf("lookup by activation: %w", err)
	}
	if len(regs) > 0 {
		if len(regs) != 1 {
			return nil, ErrConsistencyViolation
		}
		return regs, nil
	}

	regs, err = s.repo.FindByAppAndToken(ctx, appID, token)
	if err != nil {
		return nil, fmt.Errorf("lookup by app and token: %w", err)
	}
	return regs, nil
}

// bindActivation applies oracle state to the row. When the oracle reports
// the activation missing or removed, the row is left untouched: a prior
// binding is not cleared, and a new row stays unbound.
func (s *Service) bindActivation(ctx context.Context, reg *Registration, activationID string) error {
	info, err := s.activations.GetStatus(ctx, activationID)
	if err != nil {
		if errors.Is(err, activation.ErrActivationNotFound) {
			return nil
		}
		return fmt.Errorf("get activation status: %w", err)
	}
	if info.Status == activation.StatusRemoved {
		return nil
	}

	id := activationID
	userID := info.UserID
	reg.ActivationID = &id
	reg.UserID = &userID
	reg.Active = info.Status == activation.StatusActive
	return nil
}

// newRegistration initializes a fresh row for the given app and token.
func (s *Service) newRegistration(appID, token string) *Registration {
	return &Registration{
		ID:        "dev_" + uuid.New().String()[:22],
		AppID:     appID,
		PushToken: token,
	}
}

func validateCreateInput(input *models.DeviceCreateRequest) []models.FieldError {
	errs := validateBinding(input.AppID, input.Token, input.Platform)
	if input.ActivationID == "" {
		errs = append(errs, models.FieldError{Field: "activationId", Message: "is required"})
	}
	return errs
}

func validateBatchCreateInput(input *models.DeviceBatchCreateRequest) []models.FieldError {
	errs := validateBinding(input.AppID, input.Token, input.Platform)
	if len(input.ActivationIDs) == 0 {
		errs = append(errs, models.FieldError{Field: "activationIds", Message: "is required"})
	}
	for _, id := range input.ActivationIDs {
		if id == "" {
			errs = append(errs, models.FieldError{Field: "activationIds", Message: "must not contain empty values"})
			break
		}
	}
	return errs
}

func validateBinding(appID, token string, platform models.PushPlatform) []models.FieldError {
	var errs []models.FieldError
	if appID == "" {
		errs = append(errs, models.FieldError{Field: "appId", Message: "is required"})
	}
	if token == "" {
		errs = append(errs, models.FieldError{Field: "token", Message: "is required"})
	}
	if platform == "" {
		errs = append(errs, models.FieldError{Field: "platform", Message: "is required"})
	} else if !ValidPlatform(Platform(platform)) {
		errs = append(errs, models.FieldError{Field: "platform", Message: "must be one of ios, android, huawei"})
	}
	return errs
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
