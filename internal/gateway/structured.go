package gateway

import "github.com/your-org/gen-gateway/internal/repair"

// DecodeResult decodes a successful JSON-mode result into T. When the call
// failed or the text cannot be decoded it returns fallback with degraded set.
func DecodeResult[T any](res Result, fallback T) (T, bool) {
	if !res.OK() {
		return fallback, true
	}
	var out T
	if err := repair.Decode(res.Text, &out); err != nil {
		return fallback, true
	}
	return out, false
}
