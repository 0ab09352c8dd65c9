// Package policy maps a product tier to generation parameters.
// The gateway never consults it; callers resolve parameters before building a request.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

const DefaultTier = "free"

// Params are the generation parameters chosen for one tier.
type Params struct {
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	JSONMode    bool    `yaml:"json_mode" json:"json_mode"`
	Depth       int     `yaml:"depth" json:"depth"`
}

// Overrides are caller choices layered over tier defaults. Zero MaxTokens and nil
// pointers keep the default, so an explicit false or 0 survives.
type Overrides struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	JSONMode    *bool
}

// Apply builds a provider request for prompt from the tier defaults and o.
func (p Params) Apply(prompt string, o Overrides) adapters.GenerateRequest {
	req := adapters.GenerateRequest{
		Model:       o.Model,
		Prompt:      prompt,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		JSONMode:    p.JSONMode,
	}
	if o.MaxTokens > 0 {
		req.MaxTokens = o.MaxTokens
	}
	if o.Temperature != nil {
		req.Temperature = *o.Temperature
	}
	if o.JSONMode != nil {
		req.JSONMode = *o.JSONMode
	}
	return req
}

type Policy interface {
	Params(tier string) Params
}

// Static is a fixed tier table. Unknown tiers resolve to the fallback tier.
type Static struct {
	tiers    map[string]Params
	fallback string
}

func Defaults() map[string]Params {
	return map[string]Params{
		"free":    {MaxTokens: 1024, Temperature: 0.7, JSONMode: true, Depth: 1},
		"pro":     {MaxTokens: 4096, Temperature: 0.7, JSONMode: true, Depth: 2},
		"premium": {MaxTokens: 8192, Temperature: 0.5, JSONMode: true, Depth: 3},
	}
}

func NewStatic(tiers map[string]Params, fallback string) (*Static, error) {
	if len(tiers) == 0 {
		tiers = Defaults()
	}
	if fallback == "" {
		fallback = DefaultTier
	}
	norm := make(map[string]Params, len(tiers))
	for name, p := range tiers {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("policy: empty tier name")
		}
		if p.MaxTokens <= 0 || p.MaxTokens > adapters.MaxTokensLimit {
			return nil, fmt.Errorf("policy: tier %q: max_tokens must be within [1, %d]", name, adapters.MaxTokensLimit)
		}
		if p.Temperature < 0 || p.Temperature > adapters.MaxTemperature {
			return nil, fmt.Errorf("policy: tier %q: temperature out of range", name)
		}
		norm[key] = p
	}
	if _, ok := norm[fallback]; !ok {
		return nil, fmt.Errorf("policy: fallback tier %q is not defined", fallback)
	}
	return &Static{tiers: norm, fallback: fallback}, nil
}

func (s *Static) Params(tier string) Params {
	if p, ok := s.tiers[strings.ToLower(strings.TrimSpace(tier))]; ok {
		return p
	}
	return s.tiers[s.fallback]
}

// Tiers lists the known tier names, sorted.
func (s *Static) Tiers() []string {
	out := make([]string, 0, len(s.tiers))
	for name := range s.tiers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
