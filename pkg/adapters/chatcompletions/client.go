// Package chatcompletions implements adapters.Provider for OpenAI-compatible
// chat completion endpoints such as Groq and OpenRouter.
package chatcompletions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

const (
	GroqBaseURL       = "https://api.groq.com/openai"
	OpenRouterBaseURL = "https://openrouter.ai/api"

	groqDefaultModel       = "llama-3.3-70b-versatile"
	openRouterDefaultModel = "openrouter/auto"
)

// Config describes one OpenAI-compatible backend.
type Config struct {
	Name       string
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	// Headers are sent with every request in addition to the bearer token.
	Headers map[string]string
}

// Client implements adapters.Provider for a /v1/chat/completions endpoint.
type Client struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	headers    map[string]string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	headers := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	return &Client{
		name:       cfg.Name,
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		headers:    headers,
		httpClient: cfg.HTTPClient,
	}
}

// NewGroqClient returns a client for Groq's OpenAI-compatible API.
func NewGroqClient(apiKey, model string, httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	if model == "" {
		model = groqDefaultModel
	}
	return NewClient(Config{Name: "groq", APIKey: apiKey, BaseURL: baseURL, Model: model, HTTPClient: httpClient})
}

// NewOpenRouterClient returns a client for OpenRouter.
func NewOpenRouterClient(apiKey, model string, httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = OpenRouterBaseURL
	}
	if model == "" {
		model = openRouterDefaultModel
	}
	return NewClient(Config{
		Name:       "openrouter",
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Model:      model,
		HTTPClient: httpClient,
		Headers:    map[string]string{"X-Title": "gen-gateway"},
	})
}

func (c *Client) Name() string { return c.name }

func (c *Client) Generate(ctx context.Context, req adapters.GenerateRequest) (adapters.GenerateResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return adapters.GenerateResponse{}, adapters.ErrMissingAPIKey
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyPrompt
	}
	if req.Model == "" {
		req.Model = c.model
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = 512
	}

	hReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", nil)
	if err != nil {
		return adapters.GenerateResponse{}, fmt.Errorf("build request: %w", err)
	}
	hReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		hReq.Header.Set(k, v)
	}

	payload := map[string]any{
		"model":       req.Model,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
		"messages": []map[string]any{{
			"role":    "user",
			"content": req.Prompt,
		}},
	}
	if req.JSONMode {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}
	body, err := adapters.DoJSON(ctx, c.httpClient, hReq, payload)
	if err != nil {
		return adapters.GenerateResponse{}, err
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return adapters.GenerateResponse{}, adapters.MalformedResponse(http.StatusOK, err)
	}

	text := ""
	if len(parsed.Choices) > 0 {
		text = strings.TrimSpace(parsed.Choices[0].Message.Content)
	}
	if text == "" {
		return adapters.GenerateResponse{}, adapters.ErrEmptyResponse
	}

	return adapters.GenerateResponse{
		Text:         text,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
		Raw:          body,
	}, nil
}
