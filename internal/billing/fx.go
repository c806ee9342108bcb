package billing

import (
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/alkeincodes/bundle-tool/internal/billing/chargebee"
	"github.com/alkeincodes/bundle-tool/internal/billing/domain"
	"github.com/alkeincodes/bundle-tool/internal/billing/service"
	appconfig "github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/observability/tracing"
)

var Module = fx.Module("billing",
	fx.Provide(func(cfg appconfig.Config, log *zap.Logger) domain.Provider {
		return chargebee.NewClient(chargebee.Config{
			Site:   cfg.ChargebeeSite,
			APIKey: cfg.ChargebeeAPIKey,
		}, tracing.WrapHTTPClient(&http.Client{}), log)
	}),
	fx.Provide(func(cfg appconfig.Config) service.Pricing {
		return service.Pricing{
			PlanID:           cfg.ChargebeePlanID,
			CouponID:         cfg.ChargebeeCouponID,
			ThreePaySchemeID: cfg.ThreePaySchemeID,
			FullPayAmount:    cfg.FullPayAmount,
			ThreePayAmount:   cfg.ThreePayAmount,
		}
	}),
	fx.Provide(service.NewService),
)
