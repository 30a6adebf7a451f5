// Package checks provides the default DifferenceAnalyzer: a multiplexer
// that routes element pairs to a set of checks by element kind, keeps the
// kind stack balanced across the traversal, and folds annotation
// differences into their parent's report.
package checks

import (
	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// Check is a stateful visitor of element pairs, keyed by element kind.
// The dispatcher guarantees that Initialize runs exactly once before any
// visit, that every Visit is matched by exactly one VisitEnd in LIFO
// order, and that calls are never concurrent for the same check.
//
// The typical shape is a push/pop state machine: Visit inspects the pair
// and pushes a pending record; VisitEnd pops it and, if the record says
// so, synthesizes differences. Checks that push on every Visit keep the
// pairing trivially; see Stateful.
type Check interface {
	// ID returns the check's stable identifier, also used as its
	// configuration namespace.
	ID() string

	// Initialize hands the check its configuration. Called once.
	Initialize(ctx *engine.AnalysisContext) error

	// SetEnvironments hands the check both sides' APIs before the
	// traversal starts.
	SetEnvironments(oldAPI, newAPI *api.API)

	// Interest returns the element kinds the check wants to visit. A
	// check with an empty interest set is never visited.
	Interest() []api.ElementKind

	// Visit opens the analysis of one non-annotation pair of the
	// check's interest. Either element may be nil.
	Visit(kind api.ElementKind, oldElement, newElement api.Element) error

	// VisitAnnotation analyzes one annotation pair and returns its
	// differences inline. Only called on checks interested in
	// api.KindAnnotation; annotation pairs never open a Visit/VisitEnd
	// bracket.
	VisitAnnotation(oldElement, newElement api.Element) ([]*api.Difference, error)

	// VisitEnd closes the most recent open Visit and returns the
	// differences found for that pair, if any.
	VisitEnd() ([]*api.Difference, error)

	// Close tears the check down. Called once by the owning analyzer.
	Close() error
}

// Base supplies neutral implementations of the non-visiting parts of
// Check, for embedding.
type Base struct {
	oldAPI *api.API
	newAPI *api.API
}

// Initialize is a no-op.
func (b *Base) Initialize(*engine.AnalysisContext) error { return nil }

// SetEnvironments records both sides' APIs.
func (b *Base) SetEnvironments(oldAPI, newAPI *api.API) {
	b.oldAPI = oldAPI
	b.newAPI = newAPI
}

// OldAPI returns the old side's API.
func (b *Base) OldAPI() *api.API { return b.oldAPI }

// NewAPI returns the new side's API.
func (b *Base) NewAPI() *api.API { return b.newAPI }

// VisitAnnotation reports no differences.
func (b *Base) VisitAnnotation(api.Element, api.Element) ([]*api.Difference, error) {
	return nil, nil
}

// Close is a no-op.
func (b *Base) Close() error { return nil }

// Activation is one pending record on a stateful check's active stack.
type Activation[T any] struct {
	Old  api.Element
	New  api.Element
	Data T
}

// Stateful extends Base with the per-check active stack. Checks built on
// it push one record per Visit, interesting or not, and pop
// unconditionally in VisitEnd, which keeps the stack balanced under the
// dispatcher's LIFO guarantee.
type Stateful[T any] struct {
	Base

	active engine.Stack[Activation[T]]
}

// PushActive records a pending pair with check-specific data.
func (s *Stateful[T]) PushActive(oldElement, newElement api.Element, data T) {
	s.active.Push(Activation[T]{Old: oldElement, New: newElement, Data: data})
}

// PopActive removes and returns the most recent pending record.
func (s *Stateful[T]) PopActive() (Activation[T], bool) {
	return s.active.Pop()
}

// ActiveDepth returns the number of pending records.
func (s *Stateful[T]) ActiveDepth() int {
	return s.active.Depth()
}
