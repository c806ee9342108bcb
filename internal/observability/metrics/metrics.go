package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the const labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// OfferMetrics tracks offer fulfillment outcomes and token churn.
type OfferMetrics struct {
	offersTotal          *prometheus.CounterVec
	registrationFailures *prometheus.CounterVec
	tokenRefreshes       prometheus.Counter
}

var (
	offerMetricsOnce sync.Once
	offerMetrics     *OfferMetrics
)

// Offer returns the process-wide offer metrics, registering them on first
// use.
func Offer(cfg Config) *OfferMetrics {
	offerMetricsOnce.Do(func() {
		offerMetrics = newOfferMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return offerMetrics
}

// ResetOfferMetricsForTest clears the singleton so tests can re-register
// against their own registry.
func ResetOfferMetricsForTest() {
	offerMetricsOnce = sync.Once{}
	offerMetrics = nil
}

func newOfferMetrics(registerer prometheus.Registerer, cfg Config) *OfferMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bundletool"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	offersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "bundletool_offers_total",
			Help:        "Offer fulfillment attempts by variant and terminal result.",
			ConstLabels: constLabels,
		},
		[]string{"variant", "result"}, // result: success | billing_failed | mio_failed | hub_failed | invalid
	)

	registrationFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "bundletool_registration_failures_total",
			Help:        "Platform registration failures after billing committed.",
			ConstLabels: constLabels,
		},
		[]string{"stage"}, // mio | hub
	)

	tokenRefreshes := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "bundletool_token_refreshes_total",
			Help:        "Client-credentials token exchanges against the platform identity provider.",
			ConstLabels: constLabels,
		},
	)

	for _, collector := range []prometheus.Collector{offersTotal, registrationFailures, tokenRefreshes} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
		}
	}

	return &OfferMetrics{
		offersTotal:          offersTotal,
		registrationFailures: registrationFailures,
		tokenRefreshes:       tokenRefreshes,
	}
}

// ObserveOffer records one terminal offer outcome.
func (m *OfferMetrics) ObserveOffer(variant, result string) {
	if m == nil {
		return
	}
	m.offersTotal.WithLabelValues(variant, result).Inc()
}

// ObserveRegistrationFailure records a failed Mio or Hub registration.
func (m *OfferMetrics) ObserveRegistrationFailure(stage string) {
	if m == nil {
		return
	}
	m.registrationFailures.WithLabelValues(stage).Inc()
}

// ObserveTokenRefresh records one token exchange.
func (m *OfferMetrics) ObserveTokenRefresh() {
	if m == nil {
		return
	}
	m.tokenRefreshes.Inc()
}
