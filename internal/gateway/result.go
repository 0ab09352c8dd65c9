package gateway

// Result is either a success ({Text, Provider}) or a failure (Err), never both.
type Result struct {
	Text      string
	Provider  string
	RequestID string
	Err       *Error
}

func (r Result) OK() bool {
	return r.Err == nil
}

func succeeded(requestID, provider, text string) Result {
	return Result{Text: text, Provider: provider, RequestID: requestID}
}

func failed(requestID string, err *Error) Result {
	return Result{RequestID: requestID, Err: err}
}

// Status is "ok" for a success and the error kind otherwise.
func (r Result) Status() string {
	if r.Err == nil {
		return "ok"
	}
	return string(r.Err.Kind)
}
