package app

import (
	"fmt"
	"io"

	"github.com/your-org/gen-gateway/internal/config"
	"github.com/your-org/gen-gateway/internal/trace"
)

// ShowTrace prints a saved call trace, one line per attempt.
func ShowTrace(path string, out io.Writer) error {
	tr, err := trace.LoadFromFile(path)
	if err != nil {
		return err
	}
	status := "ok"
	if tr.Error != "" {
		status = "error"
	}
	_, _ = fmt.Fprintf(out, "request %s: %s provider=%s latency=%s\n", tr.RequestID, status, tr.Provider, tr.TotalLatency)
	for i, a := range tr.Attempts {
		_, _ = fmt.Fprintf(out, "  %d. %-10s %-15s %6dms %s\n", i+1, a.Provider, a.Outcome, a.ElapsedMs(), a.Message)
	}
	if tr.Error != "" {
		_, _ = fmt.Fprintf(out, "error: %s\n", tr.Error)
	}
	return nil
}

// ValidateConfig loads the process configuration and reports the fallback order.
func ValidateConfig(out io.Writer) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	_, _ = fmt.Fprintf(out, "config is valid: timeout=%s\n", cfg.ProviderTimeout)
	for i, name := range cfg.ProviderOrder {
		state := "not configured"
		if cfg.Providers[name].Configured() {
			state = "configured"
		}
		_, _ = fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, name, state)
	}
	return cfg, nil
}
