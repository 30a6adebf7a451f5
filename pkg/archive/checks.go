package archive

import (
	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/checks"
)

// Difference codes emitted by the manifest checks. Codes are the external
// contract for downstream filtering and stay stable across releases.
const (
	CodeEntryAdded       = "entry.added"
	CodeEntryRemoved     = "entry.removed"
	CodeContentChanged   = "entry.content.changed"
	CodeAttributeChanged = "entry.attribute.changed"
	CodeMetaAdded        = "entry.meta.added"
	CodeMetaRemoved      = "entry.meta.removed"
	CodeMetaChanged      = "entry.meta.changed"
)

// entryState classifies what happened to an entry pair.
type entryState int

const (
	entryUnchanged entryState = iota
	entryAdded
	entryRemoved
	entryChanged
)

// entryCheck reports added, removed, and content-changed manifest entries.
type entryCheck struct {
	checks.Stateful[entryState]

	analyzer *Analyzer
}

func newEntryCheck(a *Analyzer) *entryCheck {
	return &entryCheck{analyzer: a}
}

func (c *entryCheck) ID() string { return AnalyzerID + ".entries" }

func (c *entryCheck) Interest() []api.ElementKind {
	return []api.ElementKind{KindEntry}
}

func (c *entryCheck) Visit(_ api.ElementKind, oldElement, newElement api.Element) error {
	state := entryUnchanged

	switch {
	case oldElement == nil:
		state = entryAdded
	case newElement == nil:
		state = entryRemoved
	case value(oldElement) != value(newElement):
		state = entryChanged
	}

	c.PushActive(oldElement, newElement, state)

	return nil
}

func (c *entryCheck) VisitEnd() ([]*api.Difference, error) {
	active, ok := c.PopActive()
	if !ok || active.Data == entryUnchanged {
		return nil, nil
	}

	locale := c.analyzer.locale
	bundle := c.analyzer.bundle

	switch active.Data {
	case entryAdded:
		name := active.New.FullName()

		return []*api.Difference{api.NewDifference(CodeEntryAdded).
			WithName("entry added").
			WithDescription(bundle.Resolve(CodeEntryAdded, locale, name)).
			WithAttachment("entry", name).
			WithClassification(api.CompatSource, api.SeverityNonBreaking).
			WithClassification(api.CompatBinary, api.SeverityNonBreaking).
			Build()}, nil
	case entryRemoved:
		name := active.Old.FullName()

		return []*api.Difference{api.NewDifference(CodeEntryRemoved).
			WithName("entry removed").
			WithDescription(bundle.Resolve(CodeEntryRemoved, locale, name)).
			WithAttachment("entry", name).
			WithClassification(api.CompatSource, api.SeverityBreaking).
			WithClassification(api.CompatBinary, api.SeverityBreaking).
			Build()}, nil
	case entryChanged:
		name := active.New.FullName()

		return []*api.Difference{api.NewDifference(CodeContentChanged).
			WithName("entry content changed").
			WithDescription(bundle.Resolve(CodeContentChanged, locale, name)).
			WithAttachment("entry", name).
			WithAttachment("oldChecksum", value(active.Old)).
			WithAttachment("newChecksum", value(active.New)).
			WithClassification(api.CompatSemantic, api.SeverityPotentiallyBreaking).
			Build()}, nil
	case entryUnchanged:
	}

	return nil, nil
}

// attributeCheck reports changed entry attributes. Attributes of added or
// removed entries are never visited: the traversal does not descend into
// single-sided subtrees.
type attributeCheck struct {
	checks.Stateful[bool]

	analyzer *Analyzer
}

func newAttributeCheck(a *Analyzer) *attributeCheck {
	return &attributeCheck{analyzer: a}
}

func (c *attributeCheck) ID() string { return AnalyzerID + ".attributes" }

func (c *attributeCheck) Interest() []api.ElementKind {
	return []api.ElementKind{KindAttribute}
}

func (c *attributeCheck) Visit(_ api.ElementKind, oldElement, newElement api.Element) error {
	changed := oldElement != nil && newElement != nil && value(oldElement) != value(newElement)
	c.PushActive(oldElement, newElement, changed)

	return nil
}

func (c *attributeCheck) VisitEnd() ([]*api.Difference, error) {
	active, ok := c.PopActive()
	if !ok || !active.Data {
		return nil, nil
	}

	name := active.New.FullName()

	return []*api.Difference{api.NewDifference(CodeAttributeChanged).
		WithName("attribute changed").
		WithDescription(c.analyzer.bundle.Resolve(CodeAttributeChanged, c.analyzer.locale,
			name, value(active.Old), value(active.New))).
		WithAttachment("attribute", name).
		WithAttachment("oldValue", value(active.Old)).
		WithAttachment("newValue", value(active.New)).
		WithClassification(api.CompatSemantic, api.SeverityPotentiallyBreaking).
		Build()}, nil
}

// metaCheck reports metadata annotation changes inline; the dispatcher
// folds them into the owning entry's report.
type metaCheck struct {
	checks.Base

	analyzer *Analyzer
}

func newMetaCheck(a *Analyzer) *metaCheck {
	return &metaCheck{analyzer: a}
}

func (c *metaCheck) ID() string { return AnalyzerID + ".meta" }

func (c *metaCheck) Interest() []api.ElementKind {
	return []api.ElementKind{api.KindAnnotation}
}

func (c *metaCheck) Visit(api.ElementKind, api.Element, api.Element) error {
	return nil
}

func (c *metaCheck) VisitEnd() ([]*api.Difference, error) {
	return nil, nil
}

func (c *metaCheck) VisitAnnotation(oldElement, newElement api.Element) ([]*api.Difference, error) {
	var (
		code string
		name string
	)

	switch {
	case oldElement == nil:
		code, name = CodeMetaAdded, newElement.FullName()
	case newElement == nil:
		code, name = CodeMetaRemoved, oldElement.FullName()
	case value(oldElement) != value(newElement):
		code, name = CodeMetaChanged, newElement.FullName()
	default:
		return nil, nil
	}

	builder := api.NewDifference(code).
		WithName("metadata " + code[len("entry.meta."):]).
		WithDescription(c.analyzer.bundle.Resolve(code, c.analyzer.locale, name)).
		WithAttachment("meta", name).
		WithClassification(api.CompatOther, api.SeverityNonBreaking)

	if code == CodeMetaChanged {
		builder = builder.
			WithAttachment("oldValue", value(oldElement)).
			WithAttachment("newValue", value(newElement))
	}

	return []*api.Difference{builder.Build()}, nil
}

// value extracts the compared payload of a manifest element; empty for
// foreign element types.
func value(e api.Element) string {
	if m, ok := e.(*Element); ok {
		return m.Value()
	}

	return ""
}
