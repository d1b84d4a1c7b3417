// Package handler provides HTTP handlers for the Pushlane API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pushlane/pushlane/internal/api/models"
	"github.com/pushlane/pushlane/internal/api/response"
	"github.com/pushlane/pushlane/internal/registration"
)

// DeviceHandler handles device registration endpoints.
type DeviceHandler struct {
	service *registration.Service
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(service *registration.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// RegisterDevice handles POST /v1/devices - register a device for a single
// activation. Repeated identical calls converge to the same stored state.
func (h *DeviceHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	reg, err := h.service.Register(r.Context(), &input)
	if err != nil {
		h.writeRegistrationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIDevice(reg))
}

// RegisterDeviceBatch handles POST /v1/devices/batch - register a device for
// multiple associated activations.
func (h *DeviceHandler) RegisterDeviceBatch(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceBatchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if err := h.service.RegisterForActivations(r.Context(), &input); err != nil {
		h.writeRegistrationError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

// UpdateDeviceStatus handles PUT /v1/devices/status - refresh the active
// flag of every registration bound to an activation.
func (h *DeviceHandler) UpdateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceStatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), input.ActivationID)
	if err != nil {
		h.writeRegistrationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeviceStatusUpdateResponse{Updated: updated})
}

// RemoveDevice handles POST /v1/devices/delete - remove all registrations
// for an application and push token. Removing nothing is a success.
func (h *DeviceHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	var input models.DeviceRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	removed, err := h.service.Remove(r.Context(), input.AppID, input.Token)
	if err != nil {
		h.writeRegistrationError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.DeviceRemoveResponse{Removed: removed})
}

// writeRegistrationError maps registration service errors onto problem
// responses.
func (h *DeviceHandler) writeRegistrationError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *registration.ValidationError
	switch {
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "validation failed", validationErr.Errors)
	case errors.Is(err, registration.ErrMultiActivationDisabled):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, registration.ErrAmbiguousRegistration):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, registration.ErrConsistencyViolation):
		response.InternalError(w, r, err.Error())
	case errors.Is(err, registration.ErrRegistrationFailed):
		response.InternalError(w, r, err.Error())
	default:
		response.InternalError(w, r, "device registration failed")
	}
}

// toAPIDevice converts a domain Registration to an API Device.
func toAPIDevice(reg *registration.Registration) models.Device {
	return models.Device{
		ID:               reg.ID,
		AppID:            reg.AppID,
		Platform:         models.PushPlatform(reg.Platform),
		TokenLast4:       reg.TokenLast4(),
		ActivationID:     reg.ActivationID,
		UserID:           reg.UserID,
		Active:           reg.Active,
		LastRegisteredAt: models.Timestamp(reg.LastRegisteredAt),
	}
}
