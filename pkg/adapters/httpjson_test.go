package adapters

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDoJSONCancelledContextUnwrapsToContextError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, nil)
	_, err := DoJSON(ctx, srv.Client(), req, map[string]string{"a": "b"})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestNewStatusErrorTruncatesBody(t *testing.T) {
	err := NewStatusError(500, []byte(strings.Repeat("x", 2000)))
	if len(err.Body) != maxErrorBody {
		t.Fatalf("expected body truncated to %d, got %d", maxErrorBody, len(err.Body))
	}
}

func TestTransportErrorMessageKeepsCause(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"malformed body", MalformedResponse(http.StatusOK, errors.New("invalid character '<'")), "status 200: parse response: invalid character '<'"},
		{"status with body", NewStatusError(http.StatusBadGateway, []byte(" upstream down ")), "status 502: upstream down"},
		{"status only", &TransportError{StatusCode: http.StatusBadGateway}, "status 502"},
		{"no response", &TransportError{Cause: errors.New("connection refused")}, "transport error: connection refused"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestGenerateRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  GenerateRequest
		ok   bool
	}{
		{"valid", GenerateRequest{Prompt: "p", MaxTokens: 1, Temperature: 0.7}, true},
		{"empty prompt", GenerateRequest{Prompt: "  ", MaxTokens: 1}, false},
		{"zero tokens", GenerateRequest{Prompt: "p"}, false},
		{"negative temperature", GenerateRequest{Prompt: "p", MaxTokens: 1, Temperature: -0.1}, false},
		{"temperature above two", GenerateRequest{Prompt: "p", MaxTokens: 1, Temperature: 2.1}, false},
		{"temperature two", GenerateRequest{Prompt: "p", MaxTokens: 1, Temperature: 2}, true},
		{"tokens at limit", GenerateRequest{Prompt: "p", MaxTokens: MaxTokensLimit}, true},
		{"tokens above limit", GenerateRequest{Prompt: "p", MaxTokens: MaxTokensLimit + 1}, false},
	}
	for _, tc := range cases {
		err := tc.req.Validate()
		if (err == nil) != tc.ok {
			t.Fatalf("%s: unexpected validation result %v", tc.name, err)
		}
	}
}
