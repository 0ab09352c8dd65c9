// Package repair turns raw model output into text a strict JSON parser accepts.
//
// Normalize is the only sanctioned path from provider text to structured data.
// Every stage is a pure string function and applying it twice gives the same
// result as applying it once.
package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseable is returned by Decode when normalized text is still not JSON.
var ErrUnparseable = errors.New("repair: output is not valid json")

const fence = "```"

// Normalize applies fence stripping, trailing-comma removal and envelope extraction in order.
func Normalize(raw string) string {
	s := StripFences(raw)
	s = RemoveTrailingCommas(s)
	return strings.TrimSpace(ExtractEnvelope(s))
}

// Valid reports whether s parses as JSON.
func Valid(s string) bool {
	return json.Valid([]byte(s))
}

// Decode normalizes raw and unmarshals it into v.
func Decode(raw string, v any) error {
	s := Normalize(raw)
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return nil
}

// StripFences removes leading and trailing Markdown code fences, with or
// without a language tag, until none remain.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	for {
		next := stripFenceOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripFenceOnce(s string) string {
	if strings.HasPrefix(s, fence) {
		rest := s[len(fence):]
		// The opening fence owns the rest of its line (the language tag).
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isLanguageTag(rest[:nl]) {
			s = rest[nl+1:]
		} else if isLanguageTag(rest) {
			s = ""
		} else {
			s = rest
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(s[:len(s)-len(fence)])
	}
	return s
}

func isLanguageTag(s string) bool {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if !(b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-' || b == '_' || b == '+') {
			return false
		}
	}
	return true
}

// RemoveTrailingCommas drops every comma that is followed, ignoring whitespace
// and further commas, by a closing brace or bracket. Scanning starts at the
// first '{' (or the first '[' when there is no '{'); commas inside string
// literals and any prose before that point are left alone.
func RemoveTrailingCommas(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		start = strings.IndexByte(s, '[')
	}
	if start < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:start])

	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			b.WriteByte(c)
			continue
		}
		if inString {
			if c == '\\' {
				escape = true
			} else if c == '"' {
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}
		if c == ',' && closesAfter(s, i+1) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func closesAfter(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\n', '\r', ',':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// ExtractEnvelope returns the span from the first '{' to the last '}'.
// Text without such a span is returned unchanged.
func ExtractEnvelope(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
