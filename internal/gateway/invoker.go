package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

type callResult struct {
	resp adapters.GenerateResponse
	err  error
}

// invoke runs one provider call bounded by timeout. When the deadline passes it
// returns a *TimeoutError without waiting for the adapter; the cancelled
// context aborts the adapter's in-flight request.
func invoke(ctx context.Context, timeout time.Duration, p adapters.Provider, req adapters.GenerateRequest) (adapters.GenerateResponse, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		resp, err := safeCall(runCtx, p, req)
		done <- callResult{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return adapters.GenerateResponse{}, &TimeoutError{After: timeout}
		}
		return r.resp, r.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return adapters.GenerateResponse{}, ctx.Err()
		}
		return adapters.GenerateResponse{}, &TimeoutError{After: timeout}
	}
}

func safeCall(ctx context.Context, p adapters.Provider, req adapters.GenerateRequest) (resp adapters.GenerateResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &adapters.TransportError{Cause: fmt.Errorf("provider panic: %v", r)}
		}
	}()
	return p.Generate(ctx, req)
}
