package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestInMemoryRecorderSnapshot(t *testing.T) {
	m := NewInMemoryRecorder()
	m.ObserveAttempt("gemini", "transport_error", 20*time.Millisecond)
	m.ObserveAttempt("groq", "success", 30*time.Millisecond)
	m.ObserveResult("ok")

	snap := m.Snapshot()
	if snap.Attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", snap.Attempts)
	}
	if snap.AttemptsByOutcome["transport_error"] != 1 || snap.AttemptsByOutcome["success"] != 1 {
		t.Fatalf("unexpected outcomes: %+v", snap.AttemptsByOutcome)
	}
	if snap.Results["ok"] != 1 {
		t.Fatalf("unexpected results: %+v", snap.Results)
	}
	if snap.TotalAttemptTime != 50*time.Millisecond {
		t.Fatalf("unexpected total time: %s", snap.TotalAttemptTime)
	}

	snap.Results["ok"] = 99
	if m.Snapshot().Results["ok"] != 1 {
		t.Fatal("snapshot must not alias recorder state")
	}
}

func TestMultiRecorderFansOut(t *testing.T) {
	a := NewInMemoryRecorder()
	b := NewInMemoryRecorder()
	multi := NewMultiRecorder(a, nil, b)
	multi.ObserveAttempt("gemini", "timeout", time.Millisecond)
	multi.ObserveResult("exhausted")

	for _, r := range []*InMemoryRecorder{a, b} {
		snap := r.Snapshot()
		if snap.Attempts != 1 || snap.Results["exhausted"] != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	}
}

func TestPrometheusRecorderServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.ObserveAttempt("groq", "success", 10*time.Millisecond)
	rec.ObserveResult("ok")

	srv, err := StartPrometheusServer("127.0.0.1:0", reg)
	if err != nil {
		t.Fatalf("start server: %v", err)
	}
	defer func() { _ = StopServer(context.Background(), srv) }()

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`gen_gateway_provider_attempts_total{outcome="success",provider="groq"} 1`,
		`gen_gateway_results_total{status="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNewPrometheusRecorderRejectsNilRegistry(t *testing.T) {
	if _, err := NewPrometheusRecorder(nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
