package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); !errors.Is(err, adapters.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "hello") {
			t.Errorf("request body missing prompt: %s", string(body))
		}
		if !strings.Contains(string(body), "application/json") {
			t.Errorf("json mode not requested: %s", string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]}}],"usageMetadata":{"promptTokenCount":7,"candidatesTokenCount":8}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: 64, JSONMode: true})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Text != `{"ok":true}` || resp.InputTokens != 7 || resp.OutputTokens != 8 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGenerateStatusErrorIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: 64})
	var te *adapters.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T %v", err, err)
	}
	if te.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", te.StatusCode)
	}
}

func TestGenerateNoCandidatesIsEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: 64})
	if !errors.Is(err, adapters.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestGenerateClampsMaxTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"maxOutputTokens":1048576`) {
			t.Errorf("max output tokens not clamped: %s", string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	if _, err := c.Generate(context.Background(), adapters.GenerateRequest{Prompt: "hello", MaxTokens: adapters.MaxTokensLimit * 8}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
}
