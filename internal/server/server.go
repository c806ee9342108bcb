package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	billingdomain "github.com/alkeincodes/bundle-tool/internal/billing/domain"
	"github.com/alkeincodes/bundle-tool/internal/clock"
	appconfig "github.com/alkeincodes/bundle-tool/internal/config"
	"github.com/alkeincodes/bundle-tool/internal/observability/logger"
	"github.com/alkeincodes/bundle-tool/internal/observability/metrics"
	"github.com/alkeincodes/bundle-tool/internal/observability/tracing"
	"github.com/alkeincodes/bundle-tool/internal/offer"
	"github.com/alkeincodes/bundle-tool/internal/session"
)

const HeaderSessionID = "X-Session-Id"

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Fulfiller is the offer sequencing surface the HTTP layer drives.
// Implemented by *offer.Service.
type Fulfiller interface {
	Fulfill(ctx context.Context, req offer.Request) (billingdomain.OfferResult, error)
}

type Params struct {
	fx.In

	Config   appconfig.Config
	Sessions session.Store
	Billing  billingdomain.Service
	Offers   Fulfiller
	Clock    clock.Clock
	Log      *zap.Logger
}

// Server owns the HTTP surface of the tool: the login gate, the customer
// lookup, and the two offer endpoints.
type Server struct {
	cfg          appconfig.Config
	sessions     session.Store
	billing      billingdomain.Service
	offers       Fulfiller
	loginLimiter *rateLimiter
	log          *zap.Logger
}

func New(p Params) *Server {
	return &Server{
		cfg:          p.Config,
		sessions:     p.Sessions,
		billing:      p.Billing,
		offers:       p.Offers,
		loginLimiter: newRateLimiter(loginRateLimit, loginRateWindow, p.Clock),
		log:          p.Log.Named("server"),
	}
}

// NewEngine builds the gin engine with the ambient middleware stack.
func NewEngine(cfg appconfig.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

// RegisterRoutes mounts the API, the operational endpoints, and the static
// UI. Unmatched paths fall through to the static dir so the single-page UI
// is served at the root.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	api.POST("/auth/login", s.Login)
	api.POST("/auth/verify", s.VerifySession)

	authed := api.Group("", s.SessionRequired())
	authed.POST("/customer/lookup", s.CustomerLookup)
	authed.POST("/offer/full-pay", s.OfferFullPay)
	authed.POST("/offer/three-pay", s.OfferThreePay)

	engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.cfg.StaticDir))))
}
