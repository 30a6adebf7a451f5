package engine

import (
	"errors"
	"fmt"

	"github.com/apidrift/apidrift/pkg/api"
)

// Pair is one step of a co-iteration: the matched old and new elements.
// Exactly one side is nil for additions and removals.
type Pair struct {
	Old api.Element
	New api.Element
}

// ErrUnorderedSiblings is returned when a tree violates the strict sibling
// ordering the engine requires: two consecutive siblings compare
// non-ascending.
var ErrUnorderedSiblings = errors.New("siblings not in strict ascending order")

// CoIterator walks two element sequences sorted by the same total order in
// locked step. Elements comparing equal are yielded as a matched pair;
// otherwise the smaller element is yielded alone and its cursor advances.
type CoIterator struct {
	old, new []api.Element
	i, j     int
}

// NewCoIterator creates a co-iterator over the two sequences. Both may be
// empty or nil.
func NewCoIterator(old, new []api.Element) *CoIterator {
	return &CoIterator{old: old, new: new}
}

// Next yields the next pair. It returns false when both sequences are
// exhausted.
func (it *CoIterator) Next() (Pair, bool) {
	oldLive := it.i < len(it.old)
	newLive := it.j < len(it.new)

	switch {
	case !oldLive && !newLive:
		return Pair{}, false
	case oldLive && !newLive:
		p := Pair{Old: it.old[it.i]}
		it.i++

		return p, true
	case !oldLive && newLive:
		p := Pair{New: it.new[it.j]}
		it.j++

		return p, true
	}

	o, n := it.old[it.i], it.new[it.j]

	switch cmp := o.Compare(n); {
	case cmp == 0:
		it.i++
		it.j++

		return Pair{Old: o, New: n}, true
	case cmp < 0:
		it.i++

		return Pair{Old: o}, true
	default:
		it.j++

		return Pair{New: n}, true
	}
}

// CheckStrictOrder verifies that the sequence is strictly ascending under
// the elements' own comparator. Duplicate siblings are an analyzer bug;
// the engine refuses to traverse such trees.
func CheckStrictOrder(elements []api.Element) error {
	for i := 1; i < len(elements); i++ {
		if elements[i-1].Compare(elements[i]) >= 0 {
			return fmt.Errorf("%w: %q and %q", ErrUnorderedSiblings,
				elements[i-1].FullName(), elements[i].FullName())
		}
	}

	return nil
}
