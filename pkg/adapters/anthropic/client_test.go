package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

func TestGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Errorf("missing anthropic-version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello back"}],"usage":{"input_tokens":11,"output_tokens":22}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", "", srv.Client(), srv.URL)
	resp, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: 50, Temperature: 1.5, JSONMode: true})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Text != "hello back" || resp.InputTokens != 11 || resp.OutputTokens != 22 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if body["temperature"].(float64) != 1 {
		t.Fatalf("expected temperature clamped to 1, got %v", body["temperature"])
	}
	if body["system"] != adapters.JSONInstruction {
		t.Fatalf("expected json instruction as system prompt, got %v", body["system"])
	}
}

func TestGenerateEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClient("k", "", srv.Client(), srv.URL)
	if _, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: 5}); !errors.Is(err, adapters.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
