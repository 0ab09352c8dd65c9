// Package sdk is a Go client for the gateway HTTP API.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/your-org/gen-gateway/internal/repair"
)

// Request mirrors the POST /v1/generate body. Nil pointers take the tier default.
type Request struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	JSONMode    *bool    `json:"json_mode,omitempty"`
	Tier        string   `json:"tier,omitempty"`
	Model       string   `json:"model,omitempty"`
}

type Response struct {
	Text      string `json:"text"`
	Provider  string `json:"provider"`
	RequestID string `json:"request_id"`
}

type Provider struct {
	Name       string `json:"name"`
	Priority   int    `json:"priority"`
	Configured bool   `json:"configured"`
}

// APIError is a non-2xx gateway answer. Kind carries the gateway error kind.
type APIError struct {
	StatusCode int
	Kind       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("gateway status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gateway %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
}

// Client talks to one gateway instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("sdk: marshal request: %w", err)
	}
	var out Response
	if err := c.do(ctx, http.MethodPost, "/v1/generate", bytes.NewReader(body), &out); err != nil {
		return Response{}, err
	}
	return out, nil
}

func (c *Client) Providers(ctx context.Context) ([]Provider, error) {
	var out struct {
		Providers []Provider `json:"providers"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/providers", nil, &out); err != nil {
		return nil, err
	}
	return out.Providers, nil
}

// GenerateJSON requests JSON output and decodes it into T.
func GenerateJSON[T any](ctx context.Context, c *Client, req Request) (T, Response, error) {
	var zero T
	on := true
	req.JSONMode = &on
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return zero, Response{}, err
	}
	var out T
	if err := repair.Decode(resp.Text, &out); err != nil {
		return zero, resp, fmt.Errorf("sdk: decode %s output: %w", resp.Provider, err)
	}
	return out, resp, nil
}

// IsKind reports whether err is an APIError of the given gateway kind.
func IsKind(err error, kind string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sdk: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("sdk: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var env struct {
			Error     string `json:"error"`
			Kind      string `json:"kind"`
			RequestID string `json:"request_id"`
		}
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			apiErr.Message, apiErr.Kind, apiErr.RequestID = env.Error, env.Kind, env.RequestID
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("sdk: decode response: %w", err)
	}
	return nil
}
