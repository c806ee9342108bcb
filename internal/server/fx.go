package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	appconfig "github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/offer"
)

var Module = fx.Module("server",
	fx.Provide(func(svc *offer.Service) Fulfiller { return svc }),
	fx.Provide(NewEngine),
	fx.Provide(New),
	fx.Invoke(func(s *Server, engine *gin.Engine) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(runHTTP),
)

func runHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg appconfig.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
