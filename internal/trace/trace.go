package trace

import "time"

// Outcome classifies a single provider attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeEmptyResponse  Outcome = "empty_response"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeCancelled      Outcome = "cancelled"
)

// Attempt is the record of one bounded invocation of one provider.
type Attempt struct {
	Provider string        `json:"provider"`
	Outcome  Outcome       `json:"outcome"`
	Message  string        `json:"message,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

func (a Attempt) ElapsedMs() int64 {
	return a.Elapsed.Milliseconds()
}

// CallTrace captures one gateway call for diagnostics.
type CallTrace struct {
	RequestID    string        `json:"request_id"`
	Provider     string        `json:"provider,omitempty"`
	Error        string        `json:"error,omitempty"`
	Attempts     []Attempt     `json:"attempts"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	TotalLatency time.Duration `json:"total_latency"`
}
