// Package client talks to the remote backup service's device API:
// registration, identity/auth status, and game profile management.
// Upload transmission lives in the uploader package.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/saveguard/pkg/saveguard/logging"
)

// requestTimeout bounds a single API call.
const requestTimeout = 30 * time.Second

// logger is the package-level logger for API operations.
var logger = logging.Get("client")

// Client is a thin API client for the remote backup service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// NewWithHTTPClient creates a client with a caller-supplied HTTP client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, http: httpClient}
}

// Device is the registration result: the device's remote identity plus
// its bearer token.
type Device struct {
	DeviceID  string `json:"device_id"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// AuthStatus summarizes the device's current authentication state.
type AuthStatus struct {
	Authenticated bool    `json:"is_authenticated"`
	DeviceID      *string `json:"device_id,omitempty"`
	UserEmail     *string `json:"user_email,omitempty"`
	PlanName      *string `json:"plan_name,omitempty"`
}

// GameProfile is a remote upload destination for one game.
type GameProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

// meResponse is the /api/devices/me payload.
type meResponse struct {
	Device struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"device"`
	User struct {
		ID    string  `json:"id"`
		Email *string `json:"email"`
	} `json:"user"`
	Subscription struct {
		PlanName string `json:"plan_name"`
	} `json:"subscription"`
}

// MachineID returns a fresh random machine identifier. Callers persist
// it via configuration so registration is stable across runs.
func MachineID() string {
	return uuid.NewString()
}

// Register exchanges a browser session cookie for a device identity and
// bearer token.
func (c *Client) Register(ctx context.Context, sessionCookie, deviceName, machineID string) (*Device, error) {
	payload, err := json.Marshal(map[string]string{
		"deviceName": deviceName,
		"machineId":  machineID,
		"deviceType": "desktop",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding registration payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/devices/register", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cookie", "connect.sid="+sessionCookie)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registering device: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("registration failed: %s", bytes.TrimSpace(errText))
	}

	var device Device
	if err := json.NewDecoder(resp.Body).Decode(&device); err != nil {
		return nil, fmt.Errorf("decoding registration response: %w", err)
	}

	logger.Info("device registered", "device_id", device.DeviceID)
	return &device, nil
}

// Me queries the device's authentication status. Any failure, local or
// remote, degrades to an unauthenticated status rather than an error:
// auth checks are advisory, not load-bearing.
func (c *Client) Me(ctx context.Context, token string, deviceID *string) AuthStatus {
	unauthenticated := AuthStatus{Authenticated: false}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/devices/me", nil)
	if err != nil {
		return unauthenticated
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("auth status check failed", "error", err)
		return unauthenticated
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return unauthenticated
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return unauthenticated
	}

	plan := me.Subscription.PlanName
	return AuthStatus{
		Authenticated: true,
		DeviceID:      deviceID,
		UserEmail:     me.User.Email,
		PlanName:      &plan,
	}
}

// GameProfiles lists the device's upload destinations.
func (c *Client) GameProfiles(ctx context.Context, token string) ([]GameProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/devices/game-profiles", nil)
	if err != nil {
		return nil, fmt.Errorf("building profiles request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching game profiles: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching game profiles: status %d", resp.StatusCode)
	}

	var profiles []GameProfile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decoding game profiles: %w", err)
	}
	return profiles, nil
}

// CreateGameProfile creates a new upload destination.
func (c *Client) CreateGameProfile(ctx context.Context, token, name, platform string) (*GameProfile, error) {
	payload, err := json.Marshal(map[string]string{
		"name":     name,
		"platform": platform,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding profile payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/devices/game-profiles", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("creating game profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errText, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("creating game profile: %s", bytes.TrimSpace(errText))
	}

	var profile GameProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding game profile: %w", err)
	}
	return &profile, nil
}
