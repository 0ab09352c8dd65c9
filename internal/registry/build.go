package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/your-org/gen-gateway/internal/config"
	"github.com/your-org/gen-gateway/pkg/adapters"
	"github.com/your-org/gen-gateway/pkg/adapters/anthropic"
	"github.com/your-org/gen-gateway/pkg/adapters/chatcompletions"
	"github.com/your-org/gen-gateway/pkg/adapters/gemini"
	"github.com/your-org/gen-gateway/pkg/adapters/openai"
)

// FromConfig builds the registry in cfg.ProviderOrder. Providers without a
// credential are listed but never constructed.
func FromConfig(ctx context.Context, cfg config.Config, httpClient *http.Client) (*Registry, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	descs := make([]Descriptor, 0, len(cfg.ProviderOrder))
	for i, name := range cfg.ProviderOrder {
		pc := cfg.Providers[name]
		d := Descriptor{Name: name, Priority: i, Configured: pc.Configured()}
		if d.Configured {
			p, err := newProvider(ctx, name, pc, httpClient)
			if err != nil {
				return nil, fmt.Errorf("registry: build %s: %w", name, err)
			}
			d.Provider = p
		}
		descs = append(descs, d)
	}
	return New(descs...)
}

func newProvider(ctx context.Context, name string, pc config.Provider, hc *http.Client) (adapters.Provider, error) {
	switch name {
	case config.ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{APIKey: pc.APIKey, Model: pc.Model, BaseURL: pc.BaseURL, HTTPClient: hc})
	case config.ProviderGroq:
		return chatcompletions.NewGroqClient(pc.APIKey, pc.Model, hc, pc.BaseURL), nil
	case config.ProviderOpenRouter:
		return chatcompletions.NewOpenRouterClient(pc.APIKey, pc.Model, hc, pc.BaseURL), nil
	case config.ProviderAnthropic:
		return anthropic.NewClient(pc.APIKey, pc.Model, hc, pc.BaseURL), nil
	case config.ProviderOpenAI:
		return openai.NewClient(pc.APIKey, pc.Model, hc, pc.BaseURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, name)
	}
}
