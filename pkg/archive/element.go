package archive

import (
	"slices"
	"strings"

	"github.com/apidrift/apidrift/pkg/api"
)

// Element kinds produced by the manifest analyzer, beyond the shared
// api.KindAnnotation used for entry metadata.
const (
	// KindEntry tags one named entry of an archive manifest.
	KindEntry api.ElementKind = "entry"
	// KindAttribute tags a scalar attribute of an entry, such as its size.
	KindAttribute api.ElementKind = "attribute"
)

// Element is the manifest analyzer's tree node. Identity is (kind, name);
// the value carries the compared payload (an entry's content checksum or
// an attribute's scalar) and does not participate in ordering.
type Element struct {
	kind     api.ElementKind
	name     string
	value    string
	owner    *api.API
	archive  api.Archive
	parent   api.Element
	children []api.Element
}

func newElement(kind api.ElementKind, name, value string, owner *api.API, archive api.Archive) *Element {
	return &Element{
		kind:    kind,
		name:    name,
		value:   value,
		owner:   owner,
		archive: archive,
	}
}

// Kind returns the element's kind tag.
func (e *Element) Kind() api.ElementKind { return e.kind }

// API returns the owning API.
func (e *Element) API() *api.API { return e.owner }

// Archive returns the archive the element was found in.
func (e *Element) Archive() api.Archive { return e.archive }

// Parent returns the enclosing element, or nil for entry roots.
func (e *Element) Parent() api.Element { return e.parent }

// Children returns the children in comparator order.
func (e *Element) Children() []api.Element { return e.children }

// FullName returns the slash-joined path from the entry down.
func (e *Element) FullName() string {
	if e.parent == nil {
		return e.name
	}

	return e.parent.FullName() + "/" + e.name
}

// Name returns the element's own name.
func (e *Element) Name() string { return e.name }

// Value returns the compared payload: a checksum for entries, a scalar
// for attributes and metadata annotations.
func (e *Element) Value() string { return e.value }

// UseSites always returns nil: the manifest analyzer does not track
// use-sites.
func (e *Element) UseSites() []api.UseSite { return nil }

// Compare orders manifest elements by annotation-last rank, then kind,
// then name. The value is deliberately excluded: elements with equal
// names match across sides and their values are compared by checks.
func (e *Element) Compare(other api.Element) int {
	if r := rank(e.kind) - rank(other.Kind()); r != 0 {
		return r
	}

	if r := strings.Compare(string(e.kind), string(other.Kind())); r != 0 {
		return r
	}

	otherName := other.FullName()
	if o, ok := other.(*Element); ok {
		otherName = o.name
	}

	return strings.Compare(e.name, otherName)
}

func (e *Element) addChild(child *Element) {
	child.parent = e
	e.children = append(e.children, child)

	slices.SortFunc(e.children, func(a, b api.Element) int {
		return a.Compare(b)
	})
}

func rank(k api.ElementKind) int {
	if k == api.KindAnnotation {
		return 1
	}

	return 0
}

var _ api.Element = (*Element)(nil)
