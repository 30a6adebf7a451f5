package api

import (
	"slices"
	"strings"
)

// SimpleElement is a ready-made Element implementation for analyzers that
// build their trees in memory. It orders siblings by (annotation-last,
// kind, name), which satisfies the engine's strict-ordering requirement as
// long as names are unique per kind among siblings.
type SimpleElement struct {
	kind     ElementKind
	name     string
	api      *API
	archive  Archive
	parent   Element
	children []Element
	useSites []UseSite
}

// NewSimpleElement creates a detached element of the given kind and name.
func NewSimpleElement(kind ElementKind, name string, owner *API, archive Archive) *SimpleElement {
	return &SimpleElement{
		kind:    kind,
		name:    name,
		api:     owner,
		archive: archive,
	}
}

// Kind returns the element's kind tag.
func (e *SimpleElement) Kind() ElementKind { return e.kind }

// API returns the owning API.
func (e *SimpleElement) API() *API { return e.api }

// Archive returns the owning archive, possibly nil.
func (e *SimpleElement) Archive() Archive { return e.archive }

// Parent returns the enclosing element, or nil for roots.
func (e *SimpleElement) Parent() Element { return e.parent }

// Children returns the children in comparator order.
func (e *SimpleElement) Children() []Element { return e.children }

// FullName returns the dotted path from the root to this element.
func (e *SimpleElement) FullName() string {
	if e.parent == nil {
		return e.name
	}

	return e.parent.FullName() + "." + e.name
}

// Name returns the element's own name without the parent path.
func (e *SimpleElement) Name() string { return e.name }

// UseSites returns the recorded references to this element.
func (e *SimpleElement) UseSites() []UseSite { return e.useSites }

// AddUseSite records that site refers to this element with the given use
// type.
func (e *SimpleElement) AddUseSite(site Element, use UseType) {
	e.useSites = append(e.useSites, UseSite{Site: site, Use: use})
}

// AddChild attaches a child and keeps the children sorted. The child's
// parent link is set; attaching an element that already has a parent is an
// analyzer bug and the previous link is overwritten.
func (e *SimpleElement) AddChild(child *SimpleElement) {
	child.parent = e
	e.children = append(e.children, child)

	slices.SortFunc(e.children, func(a, b Element) int {
		return a.Compare(b)
	})
}

// Compare orders elements by annotation-last rank, then kind, then name.
func (e *SimpleElement) Compare(other Element) int {
	if r := annotationRank(e.kind) - annotationRank(other.Kind()); r != 0 {
		return r
	}

	if r := strings.Compare(string(e.kind), string(other.Kind())); r != 0 {
		return r
	}

	otherName := other.FullName()
	if o, ok := other.(*SimpleElement); ok {
		otherName = o.name
	}

	return strings.Compare(e.name, otherName)
}

func annotationRank(k ElementKind) int {
	if k == KindAnnotation {
		return 1
	}

	return 0
}
