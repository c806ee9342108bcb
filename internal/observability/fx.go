package observability

import (
	"github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/observability/logger"
	"github.com/alkeincodes/bundle-tool/internal/observability/metrics"
	"github.com/alkeincodes/bundle-tool/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const serviceName = "bundle-tool"

var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Environment: cfg.Environment,
			ServiceName: serviceName,
		})
	}),
	fx.Provide(func(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*sdktrace.TracerProvider, error) {
		return tracing.NewProvider(lc, tracing.Config{
			Enabled:          cfg.TracingEnabled,
			ServiceName:      serviceName,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.TracingExporterEndpoint,
			ExporterProtocol: cfg.TracingExporterProtocol,
			SamplingRatio:    cfg.TracingSamplingRatio,
		}, log)
	}),
	fx.Provide(func(cfg config.Config) *metrics.OfferMetrics {
		return metrics.Offer(metrics.Config{ServiceName: serviceName, Environment: cfg.Environment})
	}),
	fx.Provide(func(cfg config.Config) *metrics.HTTPMetrics {
		return metrics.HTTP(metrics.Config{ServiceName: serviceName, Environment: cfg.Environment})
	}),
	// Forces tracer construction at startup; nothing else depends on the
	// provider directly.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
