package engine

import "github.com/apidrift/apidrift/pkg/api"

// FilterSet composes element filters conjunctively: a pair is analyzed
// only if every filter accepts both sides, and a subtree is descended only
// if every filter permits it. The empty set accepts everything and
// descends everywhere.
type FilterSet []ElementFilter

// Applies reports whether every filter accepts the element. A nil element
// (the missing side of an addition or removal) is always accepted.
func (fs FilterSet) Applies(e api.Element) bool {
	if e == nil {
		return true
	}

	for _, f := range fs {
		if !f.Applies(e) {
			return false
		}
	}

	return true
}

// DescendsInto reports whether every filter permits descending into the
// element's children.
func (fs FilterSet) DescendsInto(e api.Element) bool {
	for _, f := range fs {
		if !f.DescendsInto(e) {
			return false
		}
	}

	return true
}
