package engine_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// el creates a root-less element; kids are attached in comparator order.
func el(owner *api.API, kind api.ElementKind, name string, kids ...*api.SimpleElement) *api.SimpleElement {
	e := api.NewSimpleElement(kind, name, owner, nil)
	for _, k := range kids {
		e.AddChild(k)
	}

	return e
}

func roots(elements ...*api.SimpleElement) []api.Element {
	out := make([]api.Element, len(elements))
	for i, e := range elements {
		out[i] = e
	}

	return out
}

func pairKey(oldEl, newEl api.Element) string {
	oldName, newName := "-", "-"
	if oldEl != nil {
		oldName = oldEl.FullName()
	}

	if newEl != nil {
		newName = newEl.FullName()
	}

	return oldName + "/" + newName
}

// fakeExtension supplies the Extension surface for test doubles.
type fakeExtension struct {
	id          string
	schema      string
	initErr     error
	closeErr    error
	initialized int
	closed      int
}

func (f *fakeExtension) ID() string { return f.id }

func (f *fakeExtension) ConfigSchema() string { return f.schema }

func (f *fakeExtension) Initialize(*engine.AnalysisContext) error {
	f.initialized++

	return f.initErr
}

func (f *fakeExtension) Close() error {
	f.closed++

	return f.closeErr
}

// scriptedAnalyzer serves prebuilt forests keyed by API identity and a
// fixed DifferenceAnalyzer.
type scriptedAnalyzer struct {
	fakeExtension

	forests     map[*api.API][]api.Element
	da          engine.DifferenceAnalyzer
	treesClosed int
	analyzeErr  error
}

func (a *scriptedAnalyzer) AnalyzeArchives(_ context.Context, owner *api.API) (engine.TreeAnalyzer, error) {
	if a.analyzeErr != nil {
		return nil, a.analyzeErr
	}

	return &scriptedTree{analyzer: a, roots: a.forests[owner]}, nil
}

func (a *scriptedAnalyzer) DifferenceAnalyzer(engine.TreeAnalyzer, engine.TreeAnalyzer) (engine.DifferenceAnalyzer, error) {
	return a.da, nil
}

type scriptedTree struct {
	analyzer *scriptedAnalyzer
	roots    []api.Element
}

func (t *scriptedTree) Roots(context.Context) ([]api.Element, error) {
	return t.roots, nil
}

func (t *scriptedTree) Close() error {
	t.analyzer.treesClosed++

	return nil
}

// recordingDA is a scripted DifferenceAnalyzer: it logs begin/end events
// and emits the differences scripted for each pair key.
type recordingDA struct {
	events   []string
	emit     map[string][]*api.Difference
	opened   int
	closed   int
	beginErr error
}

func (d *recordingDA) Open() error {
	d.opened++

	return nil
}

func (d *recordingDA) BeginAnalysis(oldEl, newEl api.Element) error {
	d.events = append(d.events, "begin "+pairKey(oldEl, newEl))

	return d.beginErr
}

func (d *recordingDA) EndAnalysis(oldEl, newEl api.Element) (*api.Report, error) {
	key := pairKey(oldEl, newEl)
	d.events = append(d.events, "end "+key)

	return api.NewReport(oldEl, newEl, d.emit[key]), nil
}

func (d *recordingDA) Close() error {
	d.closed++

	return nil
}

// recordingReporter captures delivered reports in order.
type recordingReporter struct {
	fakeExtension

	reports   []*api.Report
	reportErr error
}

func (r *recordingReporter) Report(rep *api.Report) error {
	if r.reportErr != nil {
		return r.reportErr
	}

	r.reports = append(r.reports, rep)

	return nil
}

func (r *recordingReporter) deliveredKeys() []string {
	out := make([]string, len(r.reports))
	for i, rep := range r.reports {
		out[i] = pairKey(rep.OldElement(), rep.NewElement())
	}

	return out
}

func (r *recordingReporter) deliveredCodes() []string {
	var out []string
	for _, rep := range r.reports {
		for _, d := range rep.Differences() {
			out = append(out, d.Code())
		}
	}

	return out
}

// funcTransform adapts a function to engine.Transform.
type funcTransform struct {
	fakeExtension

	apply func(d *api.Difference) (*api.Difference, error)
}

func (t *funcTransform) Apply(_, _ api.Element, d *api.Difference) (*api.Difference, error) {
	return t.apply(d)
}

// prefixFilter rejects analysis of elements whose name starts with a
// prefix and forbids descent into elements with a given name.
type prefixFilter struct {
	fakeExtension

	rejectPrefix string
	opaqueName   string
}

func (f *prefixFilter) Applies(e api.Element) bool {
	return f.rejectPrefix == "" || !strings.HasPrefix(baseName(e), f.rejectPrefix)
}

func (f *prefixFilter) DescendsInto(e api.Element) bool {
	return f.opaqueName == "" || baseName(e) != f.opaqueName
}

func baseName(e api.Element) string {
	if s, ok := e.(*api.SimpleElement); ok {
		return s.Name()
	}

	return e.FullName()
}

func diff(code string) *api.Difference {
	return api.NewDifference(code).Build()
}

func fmtEvents(events []string) string {
	return fmt.Sprintf("%v", events)
}
