package adapters

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingAPIKey = errors.New("missing api key")
	ErrEmptyPrompt   = errors.New("prompt is empty")
	ErrEmptyResponse = errors.New("empty response")
)

// maxErrorBody bounds how much of a failed response body is kept on a TransportError.
const maxErrorBody = 512

// TransportError reports a provider that was unreachable or answered with a non-success status.
// StatusCode is zero when the request never produced a response. Body, when set, already
// describes Cause; otherwise Cause is part of the message.
type TransportError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		if e.Cause == nil {
			return "transport error"
		}
		return fmt.Sprintf("transport error: %v", e.Cause)
	}
	switch {
	case e.Body != "":
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
	case e.Cause != nil:
		return fmt.Sprintf("status %d: %v", e.StatusCode, e.Cause)
	default:
		return fmt.Sprintf("status %d", e.StatusCode)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewStatusError builds a TransportError from a non-2xx response body.
func NewStatusError(status int, body []byte) *TransportError {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody]
	}
	return &TransportError{StatusCode: status, Body: text}
}
