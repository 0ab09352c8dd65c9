package trace

import (
	"strings"
	"time"
)

// Recorder accumulates attempts of a single gateway call in attempt order.
// It is owned by one call and is not safe for concurrent use.
type Recorder struct {
	trace CallTrace
}

func NewRecorder(requestID string, start time.Time) *Recorder {
	return &Recorder{trace: CallTrace{RequestID: requestID, StartTime: start}}
}

func (r *Recorder) Add(a Attempt) {
	r.trace.Attempts = append(r.trace.Attempts, a)
}

// Attempts returns a copy of the recorded attempts.
func (r *Recorder) Attempts() []Attempt {
	return append([]Attempt(nil), r.trace.Attempts...)
}

// Reasons joins every failed attempt as "provider: message" in attempt order.
func (r *Recorder) Reasons() string {
	return JoinReasons(r.trace.Attempts)
}

func (r *Recorder) Finalize(end time.Time, provider string, err error) CallTrace {
	out := CallTrace{
		RequestID:    r.trace.RequestID,
		Provider:     provider,
		Attempts:     r.Attempts(),
		StartTime:    r.trace.StartTime,
		EndTime:      end,
		TotalLatency: end.Sub(r.trace.StartTime),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// JoinReasons formats failed attempts for operators.
func JoinReasons(attempts []Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Outcome == OutcomeSuccess {
			continue
		}
		parts = append(parts, a.Provider+": "+a.Message)
	}
	return strings.Join(parts, "; ")
}
