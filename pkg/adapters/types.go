package adapters

import (
	"context"
	"fmt"
	"strings"
)

// MaxTemperature is the upper bound accepted for GenerateRequest.Temperature.
const MaxTemperature = 2.0

// MaxTokensLimit is the largest GenerateRequest.MaxTokens accepted. It fits every provider's int32 field.
const MaxTokensLimit = 1 << 20

// GenerateRequest is a provider-agnostic text generation request.
// It is passed by value and never modified once built.
type GenerateRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// Validate reports a malformed request.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", r.MaxTokens)
	}
	if r.MaxTokens > MaxTokensLimit {
		return fmt.Errorf("max tokens must be at most %d, got %d", MaxTokensLimit, r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > MaxTemperature {
		return fmt.Errorf("temperature must be within [0, %.0f], got %g", MaxTemperature, r.Temperature)
	}
	return nil
}

// GenerateResponse is a provider-agnostic generation response.
type GenerateResponse struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Raw          []byte
}

// Provider is the common interface all LLM adapters must satisfy.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// JSONInstruction is appended to prompts for backends without a native JSON output mode.
const JSONInstruction = "Respond with a single JSON object only. Do not wrap it in Markdown."
