package engine

import "github.com/apidrift/apidrift/pkg/api"

// traversal runs the recursive co-iterated walk over two forests and
// routes finished reports into sink. It owns the begin/end pairing
// guarantee: for every BeginAnalysis it issues exactly one EndAnalysis,
// after all descendant begin/end calls have completed.
type traversal struct {
	analyzer DifferenceAnalyzer
	filters  FilterSet
	sink     func(*api.Report) error
	observer Observer
}

func (t *traversal) run(oldRoots, newRoots []api.Element) error {
	return t.descend(oldRoots, newRoots)
}

func (t *traversal) descend(oldChildren, newChildren []api.Element) error {
	if err := CheckStrictOrder(oldChildren); err != nil {
		return err
	}

	if err := CheckStrictOrder(newChildren); err != nil {
		return err
	}

	it := NewCoIterator(oldChildren, newChildren)
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if err := t.pair(p); err != nil {
			return err
		}
	}

	return nil
}

func (t *traversal) pair(p Pair) error {
	analyzeThis := t.filters.Applies(p.Old) && t.filters.Applies(p.New)

	if analyzeThis {
		if err := t.analyzer.BeginAnalysis(p.Old, p.New); err != nil {
			return err
		}
	}

	// Descend only when both sides are present: additions and removals
	// are leaf-reported at the root of the missing subtree.
	if p.Old != nil && p.New != nil && t.filters.DescendsInto(p.Old) && t.filters.DescendsInto(p.New) {
		if err := t.descend(p.Old.Children(), p.New.Children()); err != nil {
			return err
		}
	}

	if !analyzeThis {
		return nil
	}

	report, err := t.analyzer.EndAnalysis(p.Old, p.New)
	if err != nil {
		return err
	}

	if t.observer != nil {
		t.observer.PairAnalyzed(p.Old, p.New)
	}

	if report == nil || report.Empty() {
		return nil
	}

	return t.sink(report)
}
