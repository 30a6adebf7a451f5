package api

// Report is a list of differences raised against one element pair. Either
// element may be nil for additions and removals. Empty reports are legal
// inside the engine and are dropped before reaching reporters.
type Report struct {
	oldElement  Element
	newElement  Element
	differences []*Difference
}

// NewReport creates a report for the given pair. The differences slice is
// copied.
func NewReport(oldElement, newElement Element, differences []*Difference) *Report {
	diffs := make([]*Difference, len(differences))
	copy(diffs, differences)

	return &Report{
		oldElement:  oldElement,
		newElement:  newElement,
		differences: diffs,
	}
}

// OldElement returns the old-side element, or nil for additions.
func (r *Report) OldElement() Element { return r.oldElement }

// NewElement returns the new-side element, or nil for removals.
func (r *Report) NewElement() Element { return r.newElement }

// Differences returns the differences in emission order. The returned
// slice must not be modified.
func (r *Report) Differences() []*Difference { return r.differences }

// Empty reports whether the report carries no differences.
func (r *Report) Empty() bool { return len(r.differences) == 0 }
