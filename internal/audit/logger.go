package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/your-org/gen-gateway/internal/trace"
)

// Event is one audit record per generate call. It never contains prompt or output text.
type Event struct {
	Timestamp string `json:"ts"`
	RequestID string `json:"request_id"`
	Actor     string `json:"actor"`
	Tier      string `json:"tier,omitempty"`
	Provider  string `json:"provider,omitempty"`
	Status    string `json:"status"`
	Attempts  int    `json:"attempts"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// FromTrace summarises a finished call.
func FromTrace(actor, tier, status string, ct trace.CallTrace) Event {
	ts := ct.EndTime
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
		RequestID: ct.RequestID,
		Actor:     actor,
		Tier:      tier,
		Provider:  ct.Provider,
		Status:    status,
		Attempts:  len(ct.Attempts),
		LatencyMs: ct.TotalLatency.Milliseconds(),
		Error:     ct.Error,
	}
}

// Logger appends JSONL audit records to a file.
type Logger struct {
	mu   sync.Mutex
	path string
}

func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.path != ""
}

func (l *Logger) Write(ev Event) error {
	if !l.Enabled() {
		return nil
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	b, mErr := json.Marshal(ev)
	if mErr != nil {
		return fmt.Errorf("audit marshal: %w", mErr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if mkErr := os.MkdirAll(filepath.Dir(l.path), 0o755); mkErr != nil {
		return fmt.Errorf("audit mkdir: %w", mkErr)
	}
	f, openErr := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return fmt.Errorf("audit open: %w", openErr)
	}
	defer func() { _ = f.Close() }()

	if _, wErr := f.Write(append(b, '\n')); wErr != nil {
		return fmt.Errorf("audit write: %w", wErr)
	}
	return nil
}
