package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/clock"
	"github.com/alkeincodes/bundle-tool/internal/observability/metrics"
)

// tokenExpiryMargin is subtracted from the provider-declared TTL so a token
// is never presented moments before it lapses server-side.
const tokenExpiryMargin = 60 * time.Second

// TokenSource holds one cached bearer token for the platform identity
// provider. The slot is process-global: tokens are fungible bearer
// credentials, so two goroutines both refreshing an expired slot is
// harmless (last write wins). The mutex only guards memory, not the
// exchange itself.
type TokenSource struct {
	cfg     Config
	client  *http.Client
	clk     clock.Clock
	log     *zap.Logger
	metrics *metrics.OfferMetrics

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewTokenSource builds the single-slot token cache.
func NewTokenSource(cfg Config, client *http.Client, clk clock.Clock, log *zap.Logger, m *metrics.OfferMetrics) *TokenSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenSource{
		cfg:     cfg,
		client:  client,
		clk:     clk,
		log:     log.Named("platform.token"),
		metrics: m,
	}
}

// Token returns the cached token while it is still inside its expiry
// window; otherwise it performs one client-credentials exchange and caches
// the result. No retries: retry policy belongs to the caller, and none
// exists here.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	token, expiresAt := s.token, s.expiresAt
	s.mu.RUnlock()

	if token != "" && s.clk.Now().Before(expiresAt) {
		s.log.Debug("using cached access token")
		return token, nil
	}

	s.log.Info("fetching new access token")
	token, expiresAt, err := s.exchange(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = expiresAt
	s.mu.Unlock()

	s.metrics.ObserveTokenRefresh()
	return token, nil
}

// Clear drops the cached token. Useful for tests and forced refresh.
func (s *TokenSource) Clear() {
	s.mu.Lock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}

func (s *TokenSource) exchange(ctx context.Context) (string, time.Time, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
		"scope":         {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := "failed to fetch oauth token"
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Message != "" {
				message = payload.Message
			} else if payload.Error != "" {
				message = payload.Error
			}
		}
		s.log.Error("oauth token exchange failed",
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return "", time.Time{}, fmt.Errorf("%w: %s", ErrTokenExchange, message)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: malformed token response", ErrTokenExchange)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("%w: empty access token", ErrTokenExchange)
	}

	expiresAt := s.clk.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpiryMargin)
	s.log.Info("access token obtained", zap.Time("expires_at", expiresAt))
	return payload.AccessToken, expiresAt, nil
}
