package metrics

import "time"

// Recorder defines metric hooks for gateway instrumentation.
type Recorder interface {
	ObserveAttempt(provider string, outcome string, duration time.Duration)
	ObserveResult(status string)
}

// NoopRecorder discards every observation.
type NoopRecorder struct{}

func (NoopRecorder) ObserveAttempt(string, string, time.Duration) {}
func (NoopRecorder) ObserveResult(string)                         {}
