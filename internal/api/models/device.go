package models

// DeviceCreateRequest is the request body for registering a device for a
// single activation.
type DeviceCreateRequest struct {
	AppID        string       `json:"appId" validate:"required"`
	Token        string       `json:"token" validate:"required"`
	Platform     PushPlatform `json:"platform" validate:"required,oneof=ios android huawei"`
	ActivationID string       `json:"activationId" validate:"required"`
}

// DeviceBatchCreateRequest is the request body for registering a device for
// multiple associated activations.
type DeviceBatchCreateRequest struct {
	AppID         string       `json:"appId" validate:"required"`
	Token         string       `json:"token" validate:"required"`
	Platform      PushPlatform `json:"platform" validate:"required,oneof=ios android huawei"`
	ActivationIDs []string     `json:"activationIds" validate:"required,min=1"`
}

// DeviceStatusUpdateRequest is the request body for refreshing the active
// flag of a device registration from the activation service.
type DeviceStatusUpdateRequest struct {
	ActivationID string `json:"activationId" validate:"required"`
}

// DeviceRemoveRequest is the request body for removing device registrations
// by application ID and push token.
type DeviceRemoveRequest struct {
	AppID string `json:"appId" validate:"required"`
	Token string `json:"token" validate:"required"`
}

// Device represents a device registration in API responses. The push token
// is never echoed back in full.
type Device struct {
	ID               string       `json:"id"`
	AppID            string       `json:"appId"`
	Platform         PushPlatform `json:"platform"`
	TokenLast4       string       `json:"tokenLast4"`
	ActivationID     *string      `json:"activationId,omitempty"`
	UserID           *string      `json:"userId,omitempty"`
	Active           bool         `json:"active"`
	LastRegisteredAt Timestamp    `json:"lastRegisteredAt"`
}

// DeviceStatusUpdateResponse reports how many rows a status refresh touched.
type DeviceStatusUpdateResponse struct {
	Updated int `json:"updated"`
}

// DeviceRemoveResponse reports how many rows a removal deleted.
type DeviceRemoveResponse struct {
	Removed int `json:"removed"`
}
