package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// newPlatformServer serves both the token endpoint and the registration
// endpoints so client tests exercise the real auth path.
func newPlatformServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		handler(w, r)
	}))

	cfg := Config{BaseURL: srv.URL, HubID: "hub-7", MemberTag: "tme-plus"}
	clk := &fakeClock{now: time.Now().UTC()}
	tokens := NewTokenSource(cfg, srv.Client(), clk, zap.NewNop(), nil)
	client := NewClient(cfg, srv.Client(), tokens, zap.NewNop())
	return srv, client
}

func TestRequestReturnsParsedJSON(t *testing.T) {
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "u-1"})
	})
	defer srv.Close()

	data, err := client.Request(context.Background(), "/users", http.MethodPost, map[string]any{"email": "a@x.com"}, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if data["id"] != "u-1" {
		t.Fatalf("unexpected body: %v", data)
	}
}

func TestRequestToleratesUnparsableBody(t *testing.T) {
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer srv.Close()

	data, err := client.Request(context.Background(), "/users", http.MethodPost, nil, "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil body, got %v", data)
	}
}

func TestRequestPrefersProviderMessage(t *testing.T) {
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "email already registered"})
	})
	defer srv.Close()

	_, err := client.Request(context.Background(), "/users", http.MethodPost, nil, "fallback message")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
	if apiErr.Message != "email already registered" {
		t.Fatalf("expected provider message, got %q", apiErr.Message)
	}
}

func TestRequestFallbackMessage(t *testing.T) {
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.Request(context.Background(), "/users", http.MethodPost, nil, "Mio user registration failed")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Mio user registration failed" {
		t.Fatalf("expected fallback message, got %q", apiErr.Message)
	}
}

func TestRegisterMioPayload(t *testing.T) {
	var got map[string]any
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	defer srv.Close()

	if _, err := client.RegisterMio(context.Background(), "cust-1", "a@x.com"); err != nil {
		t.Fatalf("register mio: %v", err)
	}
	if got["customer_id"] != "cust-1" || got["email"] != "a@x.com" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestRegisterHubPayload(t *testing.T) {
	var got map[string]any
	srv, client := newPlatformServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hubs/magic-link" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})
	defer srv.Close()

	if _, err := client.RegisterHub(context.Background(), "a@x.com", "Ada Lovelace"); err != nil {
		t.Fatalf("register hub: %v", err)
	}
	if got["hub_id"] != "hub-7" || got["email"] != "a@x.com" || got["name"] != "Ada Lovelace" {
		t.Fatalf("unexpected payload: %v", got)
	}
	tags, ok := got["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != "tme-plus" {
		t.Fatalf("unexpected tags: %v", got["tags"])
	}
}
