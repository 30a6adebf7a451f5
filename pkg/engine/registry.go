package engine

import (
	"errors"
	"fmt"
)

// ErrDuplicateExtensionID is returned when two registered extensions share
// an ID.
var ErrDuplicateExtensionID = errors.New("duplicate extension id")

// ExtensionRegistry yields the components taking part in an analysis.
// Implementations decide how components are located: the static registry
// below holds explicit registrations; alternative implementations can wrap
// whatever loadable-plugin mechanism the platform offers. Discovery
// happens once, at builder time.
type ExtensionRegistry interface {
	// Analyzers returns the registered analyzers in stable order.
	Analyzers() []Analyzer

	// Filters returns the registered element filters in stable order.
	Filters() []ElementFilter

	// Transforms returns the registered transforms in stable order.
	Transforms() []Transform

	// Reporters returns the registered reporters in stable order.
	Reporters() []Reporter
}

// StaticRegistry is an ExtensionRegistry over explicit registrations. It
// preserves registration order and rejects duplicate IDs across all
// component kinds.
type StaticRegistry struct {
	analyzers  []Analyzer
	filters    []ElementFilter
	transforms []Transform
	reporters  []Reporter
	ids        map[string]struct{}
}

// NewStaticRegistry creates an empty registry.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{ids: map[string]struct{}{}}
}

func (r *StaticRegistry) claim(id string) error {
	if _, exists := r.ids[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateExtensionID, id)
	}

	r.ids[id] = struct{}{}

	return nil
}

// AddAnalyzer registers an analyzer.
func (r *StaticRegistry) AddAnalyzer(a Analyzer) error {
	if err := r.claim(a.ID()); err != nil {
		return err
	}

	r.analyzers = append(r.analyzers, a)

	return nil
}

// AddFilter registers an element filter.
func (r *StaticRegistry) AddFilter(f ElementFilter) error {
	if err := r.claim(f.ID()); err != nil {
		return err
	}

	r.filters = append(r.filters, f)

	return nil
}

// AddTransform registers a transform.
func (r *StaticRegistry) AddTransform(t Transform) error {
	if err := r.claim(t.ID()); err != nil {
		return err
	}

	r.transforms = append(r.transforms, t)

	return nil
}

// AddReporter registers a reporter.
func (r *StaticRegistry) AddReporter(rep Reporter) error {
	if err := r.claim(rep.ID()); err != nil {
		return err
	}

	r.reporters = append(r.reporters, rep)

	return nil
}

// Analyzers returns the registered analyzers in registration order.
func (r *StaticRegistry) Analyzers() []Analyzer {
	out := make([]Analyzer, len(r.analyzers))
	copy(out, r.analyzers)

	return out
}

// Filters returns the registered filters in registration order.
func (r *StaticRegistry) Filters() []ElementFilter {
	out := make([]ElementFilter, len(r.filters))
	copy(out, r.filters)

	return out
}

// Transforms returns the registered transforms in registration order.
func (r *StaticRegistry) Transforms() []Transform {
	out := make([]Transform, len(r.transforms))
	copy(out, r.transforms)

	return out
}

// Reporters returns the registered reporters in registration order.
func (r *StaticRegistry) Reporters() []Reporter {
	out := make([]Reporter, len(r.reporters))
	copy(out, r.reporters)

	return out
}
