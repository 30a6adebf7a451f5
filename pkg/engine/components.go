// Package engine implements the generic API differencing pipeline: the
// ordered co-iteration of two element trees, the recursive traversal with
// its begin/end pairing guarantee, the transform chain, and report
// delivery. The engine is language-agnostic; analyzers supply the trees.
package engine

import (
	"context"

	"github.com/apidrift/apidrift/pkg/api"
)

// Extension is the shared lifecycle of every pluggable component. A
// component is constructed once, initialized once with the analysis
// context, used across a whole analysis, and closed once.
type Extension interface {
	// ID returns the component's stable identifier. It doubles as the
	// configuration namespace prefix.
	ID() string

	// ConfigSchema returns the JSON schema for the component's
	// configuration namespace, or "" when the component takes none.
	ConfigSchema() string

	// Initialize hands the component its configuration. Called exactly
	// once, before any other use.
	Initialize(ctx *AnalysisContext) error

	// Close tears the component down. Called exactly once.
	Close() error
}

// TreeAnalyzer produces the element tree for one side of an analysis.
type TreeAnalyzer interface {
	// Roots builds (or returns the already built) forest roots in
	// comparator order.
	Roots(ctx context.Context) ([]api.Element, error)

	// Close releases per-side resources such as open archives or
	// compilation handles.
	Close() error
}

// DifferenceAnalyzer is the stateful visitor of element pairs. The engine
// guarantees that every BeginAnalysis is matched by exactly one
// EndAnalysis after all descendant begin/end calls have completed, and
// that Open and Close bracket the traversal on all exit paths.
type DifferenceAnalyzer interface {
	// Open prepares the analyzer for one traversal.
	Open() error

	// BeginAnalysis opens the analysis of one pair. Either element may
	// be nil.
	BeginAnalysis(oldElement, newElement api.Element) error

	// EndAnalysis closes the analysis of one pair and returns the
	// differences found for it. A nil or empty report is legal.
	EndAnalysis(oldElement, newElement api.Element) (*api.Report, error)

	// Close releases the analyzer. Runs on all exit paths.
	Close() error
}

// Analyzer produces parallel trees for a pair of APIs and the
// DifferenceAnalyzer that understands them.
type Analyzer interface {
	Extension

	// AnalyzeArchives opens one API's archives and returns the tree
	// analyzer for that side.
	AnalyzeArchives(ctx context.Context, a *api.API) (TreeAnalyzer, error)

	// DifferenceAnalyzer returns the pair visitor parameterized by the
	// two sides.
	DifferenceAnalyzer(oldTree, newTree TreeAnalyzer) (DifferenceAnalyzer, error)
}

// ElementFilter gates which pairs are analyzed and which subtrees are
// descended into.
type ElementFilter interface {
	Extension

	// Applies reports whether the element should be analyzed.
	Applies(e api.Element) bool

	// DescendsInto reports whether the element's children should be
	// traversed.
	DescendsInto(e api.Element) bool
}

// Transform rewrites or drops individual differences based on the pair
// they were raised against. Transforms must not mutate elements or the
// input difference; they return the input unchanged to keep it, a new
// difference to replace it, or nil to drop it.
type Transform interface {
	Extension

	// Apply transforms one difference raised against the given pair.
	Apply(oldElement, newElement api.Element, d *api.Difference) (*api.Difference, error)
}

// Reporter is a terminal consumer of non-empty, transformed reports.
type Reporter interface {
	Extension

	// Report consumes one report. Reports arrive in depth-first
	// end-time order: a parent's report after all of its descendants'.
	Report(r *api.Report) error
}
