package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/your-org/gen-gateway/internal/policy"
)

var (
	ErrUnknownProvider   = errors.New("config: unknown provider")
	ErrDuplicateProvider = errors.New("config: duplicate provider")
	ErrEmptyOrder        = errors.New("config: provider order is empty")
)

// File is the optional YAML gateway file named by GATEWAY_CONFIG.
type File struct {
	Gateway GatewaySettings          `yaml:"gateway"`
	Tiers   map[string]policy.Params `yaml:"tiers"`
}

type GatewaySettings struct {
	ProviderOrder   []string                    `yaml:"provider_order"`
	ProviderTimeout string                      `yaml:"provider_timeout"`
	DefaultTier     string                      `yaml:"default_tier"`
	Providers       map[string]ProviderSettings `yaml:"providers"`
}

// ProviderSettings never carries credentials; keys come from the environment only.
type ProviderSettings struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// LoadFile parses and validates a YAML gateway file.
func LoadFile(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}
	if err := ValidateFile(f); err != nil {
		return File{}, err
	}
	return f, nil
}

func ValidateFile(f File) error {
	if len(f.Gateway.ProviderOrder) > 0 {
		if err := validateOrder(f.Gateway.ProviderOrder); err != nil {
			return err
		}
	}
	if f.Gateway.ProviderTimeout != "" {
		d, err := time.ParseDuration(f.Gateway.ProviderTimeout)
		if err != nil {
			return fmt.Errorf("config: invalid gateway.provider_timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("config: gateway.provider_timeout must be positive")
		}
	}
	for name := range f.Gateway.Providers {
		if !isKnown(name) {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
		}
	}
	if len(f.Tiers) > 0 {
		if _, err := policy.NewStatic(f.Tiers, strings.ToLower(f.Gateway.DefaultTier)); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// ApplyFile overlays file settings on top of cfg. Environment credentials are kept.
func ApplyFile(cfg Config, f File) Config {
	if len(f.Gateway.ProviderOrder) > 0 {
		order := make([]string, 0, len(f.Gateway.ProviderOrder))
		for _, name := range f.Gateway.ProviderOrder {
			order = append(order, strings.ToLower(strings.TrimSpace(name)))
		}
		cfg.ProviderOrder = order
	}
	if d, err := time.ParseDuration(f.Gateway.ProviderTimeout); err == nil && d > 0 {
		cfg.ProviderTimeout = d
	}
	if f.Gateway.DefaultTier != "" {
		cfg.DefaultTier = strings.ToLower(f.Gateway.DefaultTier)
	}

	providers := make(map[string]Provider, len(cfg.Providers))
	for name, p := range cfg.Providers {
		providers[name] = p
	}
	for name, s := range f.Gateway.Providers {
		key := strings.ToLower(name)
		p := providers[key]
		if p.Model == "" {
			p.Model = s.Model
		}
		if p.BaseURL == "" {
			p.BaseURL = s.BaseURL
		}
		providers[key] = p
	}
	cfg.Providers = providers

	if len(f.Tiers) > 0 {
		cfg.Tiers = f.Tiers
	}
	return cfg
}

// Load reads the environment and overlays GATEWAY_CONFIG when set.
func Load() (Config, error) {
	cfg := FromEnv()
	if path := strings.TrimSpace(os.Getenv("GATEWAY_CONFIG")); path != "" {
		f, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = ApplyFile(cfg, f)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown or duplicate provider names and non-positive timeouts.
func Validate(cfg Config) error {
	if err := validateOrder(cfg.ProviderOrder); err != nil {
		return err
	}
	if cfg.ProviderTimeout <= 0 {
		return fmt.Errorf("config: provider timeout must be positive, got %s", cfg.ProviderTimeout)
	}
	if cfg.TLS.Enabled && (cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "") {
		return errors.New("config: tls enabled without cert and key files")
	}
	return nil
}

func validateOrder(order []string) error {
	if len(order) == 0 {
		return ErrEmptyOrder
	}
	seen := make(map[string]struct{}, len(order))
	for _, raw := range order {
		name := strings.ToLower(strings.TrimSpace(raw))
		if !isKnown(name) {
			return fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateProvider, raw)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func isKnown(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range KnownProviders {
		if k == name {
			return true
		}
	}
	return false
}
