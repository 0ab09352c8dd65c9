// Package registry holds the ordered provider list the gateway falls back through.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/your-org/gen-gateway/pkg/adapters"
)

var (
	ErrEmptyName     = errors.New("provider name is empty")
	ErrNilProvider   = errors.New("provider is nil")
	ErrDuplicateName = errors.New("provider name already registered")
)

// Descriptor describes one backend. Lower Priority is tried first.
type Descriptor struct {
	Name       string
	Priority   int
	Configured bool
	Provider   adapters.Provider
}

// Registry is an immutable, priority-ordered provider list.
// It is built once at startup and shared read-only.
type Registry struct {
	descs []Descriptor
}

// New validates descriptors and orders them by priority. Ties keep argument order.
func New(descs ...Descriptor) (*Registry, error) {
	seen := make(map[string]struct{}, len(descs))
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.Name == "" {
			return nil, ErrEmptyName
		}
		if d.Configured && d.Provider == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilProvider, d.Name)
		}
		if _, exists := seen[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
		}
		seen[d.Name] = struct{}{}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return &Registry{descs: out}, nil
}

// All returns every descriptor in priority order, configured or not.
func (r *Registry) All() []Descriptor {
	if r == nil {
		return nil
	}
	return append([]Descriptor(nil), r.descs...)
}

// Configured returns the attemptable descriptors in priority order.
func (r *Registry) Configured() []Descriptor {
	if r == nil {
		return nil
	}
	out := make([]Descriptor, 0, len(r.descs))
	for _, d := range r.descs {
		if d.Configured {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) Get(name string) (Descriptor, bool) {
	if r == nil {
		return Descriptor{}, false
	}
	for _, d := range r.descs {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
