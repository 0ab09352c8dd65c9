package metrics

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of InMemoryRecorder counters.
type Snapshot struct {
	Attempts           int
	AttemptsByOutcome  map[string]int
	AttemptsByProvider map[string]int
	Results            map[string]int
	TotalAttemptTime   time.Duration
}

// InMemoryRecorder keeps counters in process, mostly for the CLI summary and tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		AttemptsByOutcome:  make(map[string]int),
		AttemptsByProvider: make(map[string]int),
		Results:            make(map[string]int),
	}}
}

func (m *InMemoryRecorder) ObserveAttempt(provider string, outcome string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Attempts++
	m.snap.AttemptsByOutcome[outcome]++
	m.snap.AttemptsByProvider[provider]++
	m.snap.TotalAttemptTime += duration
}

func (m *InMemoryRecorder) ObserveResult(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Results[status]++
}

func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Snapshot{
		Attempts:           m.snap.Attempts,
		AttemptsByOutcome:  make(map[string]int, len(m.snap.AttemptsByOutcome)),
		AttemptsByProvider: make(map[string]int, len(m.snap.AttemptsByProvider)),
		Results:            make(map[string]int, len(m.snap.Results)),
		TotalAttemptTime:   m.snap.TotalAttemptTime,
	}
	for k, v := range m.snap.AttemptsByOutcome {
		out.AttemptsByOutcome[k] = v
	}
	for k, v := range m.snap.AttemptsByProvider {
		out.AttemptsByProvider[k] = v
	}
	for k, v := range m.snap.Results {
		out.Results[k] = v
	}
	return out
}
