package checks

import (
	"errors"
	"fmt"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// ErrUnbalancedAnalysis is returned when EndAnalysis arrives without a
// matching BeginAnalysis. It indicates a broken traversal, not a broken
// tree.
var ErrUnbalancedAnalysis = errors.New("end of analysis without matching begin")

// frame is one level of the dispatcher's kind stack: the kind of the open
// pair plus the annotation differences buffered for its close.
type frame struct {
	kind        api.ElementKind
	annotations []*api.Difference
}

// DiffAnalyzer is the default engine.DifferenceAnalyzer. It multiplexes
// element pairs over a check set by kind interest.
//
// Annotation pairs get special treatment: by the sibling comparator's
// convention annotations sort last and are leaves, so they are never
// pushed onto the kind stack. Their differences are returned inline by
// the checks and buffered onto the enclosing pair's frame, to be flushed
// with the parent's report.
type DiffAnalyzer struct {
	oldAPI *api.API
	newAPI *api.API
	checks []Check
	byKind map[api.ElementKind][]Check
	kinds  engine.Stack[*frame]
}

// NewDiffAnalyzer creates a dispatcher over the given checks, preserving
// their registration order for difference emission.
func NewDiffAnalyzer(oldAPI, newAPI *api.API, checkSet []Check) *DiffAnalyzer {
	byKind := map[api.ElementKind][]Check{}
	for _, c := range checkSet {
		for _, k := range c.Interest() {
			byKind[k] = append(byKind[k], c)
		}
	}

	return &DiffAnalyzer{
		oldAPI: oldAPI,
		newAPI: newAPI,
		checks: checkSet,
		byKind: byKind,
	}
}

// Open hands every check both environments before the traversal starts.
func (d *DiffAnalyzer) Open() error {
	for _, c := range d.checks {
		c.SetEnvironments(d.oldAPI, d.newAPI)
	}

	return nil
}

// BeginAnalysis dispatches the pair to every check interested in its
// kind. Annotation pairs are folded into the parent frame instead of
// opening one of their own.
func (d *DiffAnalyzer) BeginAnalysis(oldElement, newElement api.Element) error {
	kind := pairKind(oldElement, newElement)

	if kind == api.KindAnnotation {
		return d.visitAnnotation(oldElement, newElement)
	}

	d.kinds.Push(&frame{kind: kind})

	for _, c := range d.byKind[kind] {
		if err := c.Visit(kind, oldElement, newElement); err != nil {
			return fmt.Errorf("check %s: %w", c.ID(), err)
		}
	}

	return nil
}

func (d *DiffAnalyzer) visitAnnotation(oldElement, newElement api.Element) error {
	parent, hasParent := d.kinds.Peek()

	for _, c := range d.byKind[api.KindAnnotation] {
		diffs, err := c.VisitAnnotation(oldElement, newElement)
		if err != nil {
			return fmt.Errorf("check %s: %w", c.ID(), err)
		}

		if hasParent {
			parent.annotations = append(parent.annotations, diffs...)
		}
	}

	return nil
}

// EndAnalysis closes the pair: it pops the kind stack, collects every
// interested check's differences in registration order, and appends the
// buffered annotation differences. Annotation pairs return no report;
// their differences ride with the parent.
func (d *DiffAnalyzer) EndAnalysis(oldElement, newElement api.Element) (*api.Report, error) {
	if pairKind(oldElement, newElement) == api.KindAnnotation {
		return nil, nil
	}

	top, ok := d.kinds.Pop()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnbalancedAnalysis, pairName(oldElement, newElement))
	}

	var diffs []*api.Difference

	for _, c := range d.byKind[top.kind] {
		emitted, err := c.VisitEnd()
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", c.ID(), err)
		}

		diffs = append(diffs, emitted...)
	}

	diffs = append(diffs, top.annotations...)

	return api.NewReport(oldElement, newElement, diffs), nil
}

// Close resets the dispatcher. The checks themselves are closed by the
// analyzer that owns them.
func (d *DiffAnalyzer) Close() error {
	for d.kinds.Depth() > 0 {
		d.kinds.Pop()
	}

	return nil
}

// Depth returns the current kind stack depth: the number of open
// non-annotation analyses on the path from the root.
func (d *DiffAnalyzer) Depth() int {
	return d.kinds.Depth()
}

// pairKind classifies a pair by element kind. Mixed-kind pairs are
// impossible: the comparator only matches elements of the same kind.
func pairKind(oldElement, newElement api.Element) api.ElementKind {
	if oldElement != nil {
		return oldElement.Kind()
	}

	return newElement.Kind()
}

func pairName(oldElement, newElement api.Element) string {
	if oldElement != nil {
		return oldElement.FullName()
	}

	if newElement != nil {
		return newElement.FullName()
	}

	return ""
}
