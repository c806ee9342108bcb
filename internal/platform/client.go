package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Config carries the externally supplied platform values.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HubID        string
	MemberTag    string
}

// Client performs authenticated calls against the downstream
// identity/registration platform. Every call is attempted exactly once
// with the transport's default timeout; failed registrations are re-run by
// the operator, not by the system.
type Client struct {
	cfg    Config
	client *http.Client
	tokens *TokenSource
	log    *zap.Logger
}

// NewClient builds the platform API client.
func NewClient(cfg Config, httpClient *http.Client, tokens *TokenSource, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		cfg:    cfg,
		client: httpClient,
		tokens: tokens,
		log:    log.Named("platform.client"),
	}
}

// Request issues one bearer-authenticated JSON call. The response body is
// parsed as JSON when possible; an unparsable body is tolerated as nil. A
// non-success status yields an *APIError whose message prefers the
// provider's own message field over fallbackMsg.
func (c *Client) Request(ctx context.Context, endpoint, method string, body any, fallbackMsg string) (map[string]any, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Info("platform api request", zap.String("method", method), zap.String("endpoint", endpoint))

	var reader io.Reader
	if body != nil && method != http.MethodGet {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		data = nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := fallbackMsg
		if message == "" {
			message = "platform api request failed"
		}
		if data != nil {
			if provided, ok := data["message"].(string); ok && provided != "" {
				message = provided
			}
		}
		c.log.Error("platform api error",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message, Raw: data}
	}

	return data, nil
}

// RegisterMio registers a billed customer with the Mio platform.
func (c *Client) RegisterMio(ctx context.Context, customerID, email string) (map[string]any, error) {
	return c.Request(ctx, "/users", http.MethodPost, map[string]any{
		"customer_id": customerID,
		"email":       email,
	}, "Mio user registration failed")
}

// RegisterHub sends a magic-link registration for the configured hub,
// tagging the member so hub-side automation can route them.
func (c *Client) RegisterHub(ctx context.Context, email, name string) (map[string]any, error) {
	return c.Request(ctx, "/hubs/magic-link", http.MethodPost, map[string]any{
		"hub_id": c.cfg.HubID,
		"email":  email,
		"name":   name,
		"tags":   []string{c.cfg.MemberTag},
	}, "Hub magic-link registration failed")
}
