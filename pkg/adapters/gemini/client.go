package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 512
)

// Client implements adapters.Provider for the Gemini generateContent API.
type Client struct {
	client *genai.Client
	model  string
}

// Config configures a Gemini client. BaseURL and HTTPClient are optional.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, adapters.ErrMissingAPIKey
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Generate(ctx context.Context, req adapters.GenerateRequest) (adapters.GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyPrompt
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if req.MaxTokens > adapters.MaxTokensLimit {
		req.MaxTokens = adapters.MaxTokensLimit
	}

	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.JSONMode {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
	if err != nil {
		return adapters.GenerateResponse{}, transportError(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyResponse
	}

	out := adapters.GenerateResponse{Text: text}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// transportError maps SDK failures onto the adapter error contract.
func transportError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &adapters.TransportError{StatusCode: apiErr.Code, Body: apiErr.Message, Cause: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &adapters.TransportError{StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message, Cause: err}
	}
	return &adapters.TransportError{Cause: err}
}
