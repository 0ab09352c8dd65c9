package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/your-org/gen-gateway/internal/policy"
	"github.com/your-org/gen-gateway/internal/security"
	"github.com/your-org/gen-gateway/pkg/logger"
)

const (
	ProviderGemini     = "gemini"
	ProviderGroq       = "groq"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"

	DefaultProviderTimeout = 25 * time.Second
	DefaultListenAddr      = ":8080"
	DefaultMetricsAddr     = ":2112"
)

// KnownProviders is the documented default fallback order.
var KnownProviders = []string{ProviderGemini, ProviderGroq, ProviderOpenRouter, ProviderAnthropic, ProviderOpenAI}

// Provider holds credentials and overrides for one backend.
type Provider struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Configured reports whether the provider has a credential.
func (p Provider) Configured() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

type TLS struct {
	Enabled bool
	security.TLSFiles
}

// Config is the process configuration, read once at startup.
type Config struct {
	Providers       map[string]Provider
	ProviderOrder   []string
	ProviderTimeout time.Duration

	ListenAddr     string
	TLS            TLS
	Log            logger.Config
	MetricsEnabled bool
	MetricsAddr    string
	TraceEnabled   bool
	TraceEndpoint  string
	TraceOutput    string // directory receiving one <request_id>.json per call
	AuditLogPath   string

	Tiers       map[string]policy.Params
	DefaultTier string
}

// FromEnv loads runtime config from environment with safe defaults.
// Invalid values are ignored in favour of the default.
func FromEnv() Config {
	cfg := Config{
		Providers:       make(map[string]Provider, len(KnownProviders)),
		ProviderOrder:   append([]string(nil), KnownProviders...),
		ProviderTimeout: DefaultProviderTimeout,
		ListenAddr:      DefaultListenAddr,
		MetricsAddr:     DefaultMetricsAddr,
		Log:             logger.FromEnv(),
		DefaultTier:     policy.DefaultTier,
	}

	for _, name := range KnownProviders {
		prefix := strings.ToUpper(name)
		cfg.Providers[name] = Provider{
			APIKey:  strings.TrimSpace(os.Getenv(prefix + "_API_KEY")),
			Model:   strings.TrimSpace(os.Getenv(prefix + "_MODEL")),
			BaseURL: strings.TrimSpace(os.Getenv(prefix + "_BASE_URL")),
		}
	}

	if v := os.Getenv("GATEWAY_PROVIDER_ORDER"); v != "" {
		if order := SplitList(v); len(order) > 0 {
			cfg.ProviderOrder = order
		}
	}
	if v := os.Getenv("GATEWAY_PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ProviderTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("GATEWAY_ADDR")); v != "" {
		cfg.ListenAddr = v
	}

	cfg.TLS = TLS{
		Enabled: envBool("GATEWAY_TLS_ENABLED"),
		TLSFiles: security.TLSFiles{
			CertFile:          os.Getenv("GATEWAY_TLS_CERT_FILE"),
			KeyFile:           os.Getenv("GATEWAY_TLS_KEY_FILE"),
			CAFile:            os.Getenv("GATEWAY_TLS_CA_FILE"),
			RequireClientCert: envBool("GATEWAY_TLS_REQUIRE_CLIENT_CERT"),
		},
	}

	cfg.MetricsEnabled = envBool("METRICS_ENABLED")
	if v := strings.TrimSpace(os.Getenv("METRICS_ADDR")); v != "" {
		cfg.MetricsAddr = v
	}
	cfg.TraceEnabled = envBool("TRACE_ENABLED")
	cfg.TraceEndpoint = strings.TrimSpace(os.Getenv("TRACE_ENDPOINT"))
	cfg.TraceOutput = strings.TrimSpace(os.Getenv("TRACE_OUTPUT"))
	cfg.AuditLogPath = strings.TrimSpace(os.Getenv("AUDIT_LOG_PATH"))
	if v := strings.TrimSpace(os.Getenv("GATEWAY_DEFAULT_TIER")); v != "" {
		cfg.DefaultTier = strings.ToLower(v)
	}

	return cfg
}

// SplitList parses a comma separated list, dropping blanks and lower-casing entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}
