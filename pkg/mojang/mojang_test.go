package mojang_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CCBlueX/axochat-client/pkg/mojang"
)

func TestClient_Authenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/authenticate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var req struct {
			Agent struct {
				Name    string `json:"name"`
				Version int    `json:"version"`
			} `json:"agent"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if req.Agent.Name != "Minecraft" || req.Agent.Version != 1 {
			t.Errorf("agent = %+v", req.Agent)
		}
		if req.Username != "user@example.com" || req.Password != "hunter2" {
			t.Errorf("credentials = %q / %q", req.Username, req.Password)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"accessToken": "at-1",
			"clientToken": "ct-1",
			"selectedProfile": {"id": "069a79f444e94726a5befca90e38aaf5", "name": "Notch"}
		}`))
	}))
	defer server.Close()

	client := &mojang.Client{BaseURL: server.URL}

	creds, err := client.Authenticate(context.Background(), "user@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if creds.AccessToken != "at-1" {
		t.Errorf("AccessToken = %q, want at-1", creds.AccessToken)
	}
	if creds.ClientToken != "ct-1" {
		t.Errorf("ClientToken = %q, want ct-1", creds.ClientToken)
	}
	if creds.Profile.Name != "Notch" {
		t.Errorf("Profile.Name = %q, want Notch", creds.Profile.Name)
	}
	if got := creds.Profile.ID.String(); got != "069a79f4-44e9-4726-a5be-fca90e38aaf5" {
		t.Errorf("Profile.ID = %q, want dashed form of the undashed wire id", got)
	}
}

func TestClient_Authenticate_Forbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "ForbiddenOperationException", "errorMessage": "Invalid credentials."}`))
	}))
	defer server.Close()

	client := &mojang.Client{BaseURL: server.URL}

	_, err := client.Authenticate(context.Background(), "user@example.com", "wrong")
	var apiErr *mojang.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Authenticate() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", apiErr.StatusCode)
	}
	if apiErr.Kind != "ForbiddenOperationException" {
		t.Errorf("Kind = %q", apiErr.Kind)
	}
	if apiErr.Message != "Invalid credentials." {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestClient_Authenticate_InvalidProfileID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accessToken": "at", "clientToken": "ct", "selectedProfile": {"id": "nope", "name": "x"}}`))
	}))
	defer server.Close()

	client := &mojang.Client{BaseURL: server.URL}

	if _, err := client.Authenticate(context.Background(), "u", "p"); err == nil {
		t.Error("Authenticate() with invalid profile id succeeded, want error")
	}
}
