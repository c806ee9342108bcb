package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every externally supplied value the tool consumes. All
// pricing amounts are integer minor units (cents).
type Config struct {
	Environment string
	Port        int
	StaticDir   string

	// Session gate.
	ToolPassword string

	// Billing provider (Chargebee).
	ChargebeeSite     string
	ChargebeeAPIKey   string
	ChargebeePlanID   string
	ChargebeeCouponID string
	ThreePaySchemeID  string

	FullPayAmount  int64
	ThreePayAmount int64

	// Downstream platform (Mio / Hub).
	PlatformAPIURL       string
	PlatformClientID     string
	PlatformClientSecret string
	PlatformHubID        string
	PlatformMemberTag    string

	// Tracing.
	TracingEnabled          bool
	TracingExporterEndpoint string
	TracingExporterProtocol string
	TracingSamplingRatio    float64
}

// Load reads configuration from the environment, honoring a local .env file
// when present. Required values fail fast so a misconfigured deploy cannot
// half-start.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 3000),
		StaticDir:   getEnv("STATIC_DIR", "./public"),

		ToolPassword: os.Getenv("TOOL_PASSWORD"),

		ChargebeeSite:     os.Getenv("CHARGEBEE_SITE"),
		ChargebeeAPIKey:   os.Getenv("CHARGEBEE_API_KEY"),
		ChargebeePlanID:   os.Getenv("CHARGEBEE_PLAN_ID"),
		ChargebeeCouponID: os.Getenv("CHARGEBEE_COUPON_ID"),
		ThreePaySchemeID:  os.Getenv("THREE_PAY_SCHEME_ID"),

		FullPayAmount:  getEnvInt64("FULL_PAY_AMOUNT", 0),
		ThreePayAmount: getEnvInt64("THREE_PAY_AMOUNT", 0),

		PlatformAPIURL:       strings.TrimRight(os.Getenv("PLATFORM_API_URL"), "/"),
		PlatformClientID:     os.Getenv("PLATFORM_CLIENT_ID"),
		PlatformClientSecret: os.Getenv("PLATFORM_CLIENT_SECRET"),
		PlatformHubID:        os.Getenv("PLATFORM_HUB_ID"),
		PlatformMemberTag:    os.Getenv("PLATFORM_MEMBER_TAG"),

		TracingEnabled:          getEnvBool("TRACING_ENABLED", false),
		TracingExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		TracingExporterProtocol: getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "http"),
		TracingSamplingRatio:    getEnvFloat("TRACING_SAMPLING_RATIO", 1.0),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	required := map[string]string{
		"TOOL_PASSWORD":      c.ToolPassword,
		"CHARGEBEE_SITE":     c.ChargebeeSite,
		"CHARGEBEE_API_KEY":  c.ChargebeeAPIKey,
		"CHARGEBEE_PLAN_ID":  c.ChargebeePlanID,
		"PLATFORM_API_URL":   c.PlatformAPIURL,
		"PLATFORM_CLIENT_ID": c.PlatformClientID,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("config: %s is required", key)
		}
	}
	if c.FullPayAmount <= 0 {
		return fmt.Errorf("config: FULL_PAY_AMOUNT must be a positive amount in cents")
	}
	if c.ThreePayAmount <= 0 {
		return fmt.Errorf("config: THREE_PAY_AMOUNT must be a positive amount in cents")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return value
}

func getEnvFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return value
}
