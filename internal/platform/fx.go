package platform

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/clock"
	appconfig "github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/observability/metrics"
	"github.com/alkeincodes/bundle-tool/internal/observability/tracing"
)

var Module = fx.Module("platform",
	fx.Provide(func(cfg appconfig.Config) Config {
		return Config{
			BaseURL:      cfg.PlatformAPIURL,
			ClientID:     cfg.PlatformClientID,
			ClientSecret: cfg.PlatformClientSecret,
			HubID:        cfg.PlatformHubID,
			MemberTag:    cfg.PlatformMemberTag,
		}
	}),
	fx.Provide(func(cfg Config, clk clock.Clock, log *zap.Logger, m *metrics.OfferMetrics) *TokenSource {
		return NewTokenSource(cfg, tracing.WrapHTTPClient(nil), clk, log, m)
	}),
	fx.Provide(func(cfg Config, tokens *TokenSource, log *zap.Logger) *Client {
		return NewClient(cfg, tracing.WrapHTTPClient(&http.Client{}), tokens, log)
	}),
)
