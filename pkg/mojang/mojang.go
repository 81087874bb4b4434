// Package mojang implements the legacy Yggdrasil credential flow. It is a
// standalone helper: it hands back credentials for the caller to feed into
// the chat session and has no coupling to it.
package mojang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public Yggdrasil authentication service.
const DefaultBaseURL = "https://authserver.mojang.com"

// Client talks to a Yggdrasil-compatible authentication service.
type Client struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string

	// HTTPClient overrides the default client with its 10s timeout.
	HTTPClient *http.Client
}

// Profile is the game profile selected by an authentication.
type Profile struct {
	ID   uuid.UUID
	Name string
}

// Credentials is the result of a successful authentication.
type Credentials struct {
	AccessToken string
	ClientToken string
	Profile     Profile
}

// APIError is an error response from the authentication service.
type APIError struct {
	StatusCode int
	Kind       string `json:"error"`
	Message    string `json:"errorMessage"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("mojang: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("mojang: authentication failed with status %d", e.StatusCode)
}

type authRequest struct {
	Agent    agent  `json:"agent"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type agent struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type authResponse struct {
	AccessToken     string `json:"accessToken"`
	ClientToken     string `json:"clientToken"`
	SelectedProfile struct {
		// undashed UUID
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"selectedProfile"`
}

// Authenticate exchanges account credentials for an access token and game
// profile. Profile IDs arrive undashed from the service and are returned as
// proper UUIDs.
func (c *Client) Authenticate(ctx context.Context, username, password string) (Credentials, error) {
	body, err := json.Marshal(authRequest{
		Agent:    agent{Name: "Minecraft", Version: 1},
		Username: username,
		Password: password,
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL()+"/authenticate", bytes.NewReader(body))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return Credentials{}, apiErr
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode auth response: %w", err)
	}

	id, err := uuid.Parse(auth.SelectedProfile.ID)
	if err != nil {
		return Credentials{}, fmt.Errorf("invalid profile id %q: %w", auth.SelectedProfile.ID, err)
	}

	return Credentials{
		AccessToken: auth.AccessToken,
		ClientToken: auth.ClientToken,
		Profile: Profile{
			ID:   id,
			Name: auth.SelectedProfile.Name,
		},
	}, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
