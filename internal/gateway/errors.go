package gateway

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRequest     = errors.New("invalid generation request")
	ErrNoProviders        = errors.New("no providers configured")
	ErrAllProvidersFailed = errors.New("all providers failed")
	ErrRepairFailed       = errors.New("response repair failed")
	ErrProviderTimeout    = errors.New("provider timeout")
)

// Kind classifies a failed Result.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotConfigured  Kind = "not_configured"
	KindTimeout        Kind = "timeout"
	KindTransport      Kind = "transport"
	KindEmptyResponse  Kind = "empty_response"
	KindExhausted      Kind = "exhausted"
	KindRepairFailure  Kind = "repair_failure"
)

// Error is the failure carried by a Result.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches the sentinel that corresponds to the error kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidRequest:
		return e.Kind == KindInvalidRequest
	case ErrNoProviders:
		return e.Kind == KindNotConfigured
	case ErrAllProvidersFailed:
		return e.Kind == KindExhausted
	case ErrRepairFailed:
		return e.Kind == KindRepairFailure
	}
	return false
}

// TimeoutError reports an attempt abandoned at its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %dms", e.After.Milliseconds())
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrProviderTimeout
}
