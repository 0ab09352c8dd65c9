package trace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestRecorderReasonsInAttemptOrder(t *testing.T) {
	start := time.Now()
	r := NewRecorder("req_1", start)
	r.Add(Attempt{Provider: "gemini", Outcome: OutcomeTimeout, Message: "timed out after 25000ms", Elapsed: 25 * time.Second})
	r.Add(Attempt{Provider: "groq", Outcome: OutcomeTransportError, Message: "status 429: rate limited", Elapsed: 40 * time.Millisecond})
	r.Add(Attempt{Provider: "openrouter", Outcome: OutcomeSuccess, Elapsed: time.Second})

	want := "gemini: timed out after 25000ms; groq: status 429: rate limited"
	if got := r.Reasons(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	tr := r.Finalize(start.Add(2*time.Second), "openrouter", nil)
	if len(tr.Attempts) != 3 || tr.TotalLatency != 2*time.Second || tr.Provider != "openrouter" {
		t.Fatalf("unexpected trace: %+v", tr)
	}
	if tr.Attempts[0].ElapsedMs() != 25000 {
		t.Fatalf("unexpected elapsed ms %d", tr.Attempts[0].ElapsedMs())
	}
}

func TestSaveAndLoadTrace(t *testing.T) {
	r := NewRecorder("req_2", time.Unix(0, 0).UTC())
	r.Add(Attempt{Provider: "gemini", Outcome: OutcomeEmptyResponse, Message: "empty response"})
	tr := r.Finalize(time.Unix(1, 0).UTC(), "", errors.New("all providers failed"))

	path := filepath.Join(t.TempDir(), "trace.json")
	if err := SaveToFile(path, tr); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RequestID != "req_2" || got.Error != "all providers failed" || len(got.Attempts) != 1 {
		t.Fatalf("unexpected loaded trace: %+v", got)
	}
}

func TestSaveToFileConcurrentWritersLeaveValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				r := NewRecorder(fmt.Sprintf("req_%d_%d", round, w), time.Unix(0, 0).UTC())
				for i := 0; i <= w; i++ {
					r.Add(Attempt{Provider: "gemini", Outcome: OutcomeTransportError, Message: "status 503: overloaded"})
				}
				if err := SaveToFile(path, r.Finalize(time.Unix(1, 0).UTC(), "", nil)); err != nil {
					t.Errorf("save: %v", err)
				}
			}(w)
		}
		wg.Wait()
		if _, err := LoadFromFile(path); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the trace file, found %d entries", len(entries))
	}
}

func TestSaveToDirWritesOneFilePerRequest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr := NewRecorder(fmt.Sprintf("req_%02d", i), time.Unix(0, 0).UTC()).Finalize(time.Unix(1, 0).UTC(), "groq", nil)
			if _, err := SaveToDir(dir, tr); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("req_%02d", i)
		got, err := LoadFromFile(filepath.Join(dir, id+".json"))
		if err != nil {
			t.Fatalf("load %s: %v", id, err)
		}
		if got.RequestID != id || got.Provider != "groq" {
			t.Fatalf("unexpected trace for %s: %+v", id, got)
		}
	}
}

func TestSaveToDirRejectsUnsafeRequestID(t *testing.T) {
	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		tr := CallTrace{RequestID: id}
		if _, err := SaveToDir(t.TempDir(), tr); err == nil {
			t.Fatalf("expected error for request id %q", id)
		}
	}
}

func TestSetupOTelDisabledIsNoop(t *testing.T) {
	rt, err := SetupOTel(context.Background(), OTelConfig{})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if rt.Tracer == nil {
		t.Fatal("expected a tracer")
	}
	if err := rt.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
