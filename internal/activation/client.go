package activation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pushlane/pushlane/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in the resilience registry.
	ProviderName = "activation-status"
)

// ClientConfig holds configuration for the activation status client.
type ClientConfig struct {
	// BaseURL is the activation service base URL.
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an activation status service client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new activation status client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// API response types (from the activation service).

type statusResponse struct {
	ActivationID string `json:"activationId"`
	Status       string `json:"activationStatus"`
	UserID       string `json:"userId"`
}

// GetStatus returns the current status of an activation.
func (c *Client) GetStatus(ctx context.Context, activationID string) (*StatusInfo, error) {
	reqURL := fmt.Sprintf("%s/v1/activations/%s/status", c.baseURL, url.PathEscape(activationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch activation status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrActivationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from activation status endpoint", resp.StatusCode)
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode activation status: %w", err)
	}

	return &StatusInfo{
		ActivationID: payload.ActivationID,
		Status:       parseStatus(payload.Status),
		UserID:       payload.UserID,
	}, nil
}

// parseStatus maps service status strings onto the known set. Statuses this
// client does not recognize are reported as unknown, not as errors.
func parseStatus(s string) Status {
	switch Status(strings.ToUpper(s)) {
	case StatusActive:
		return StatusActive
	case StatusInactive:
		return StatusInactive
	case StatusRemoved:
		return StatusRemoved
	default:
		return StatusUnknown
	}
}

// Ensure Client implements StatusProvider.
var _ StatusProvider = (*Client)(nil)
