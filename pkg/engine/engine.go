package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/apidrift/apidrift/pkg/api"
)

// Configuration errors reported by Build and, for ErrNilAPI, by Analyze.
// These are programmer errors and are not recovered.
var (
	// ErrNoAnalyzers is returned when building an engine with no
	// analyzers registered.
	ErrNoAnalyzers = errors.New("no analyzers registered")

	// ErrNilContext is returned when building an engine with a nil
	// analysis context.
	ErrNilContext = errors.New("nil analysis context")

	// ErrNilAPI is returned when Analyze is handed a nil API.
	ErrNilAPI = errors.New("nil api")
)

// Builder assembles an Engine from explicitly given components and
// registries. Components are collected in registration order; registries
// are drained once, when they are added.
type Builder struct {
	analyzers  []Analyzer
	filters    []ElementFilter
	transforms []Transform
	reporters  []Reporter
	observer   Observer
	log        *slog.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{log: slog.Default()}
}

// WithAnalyzers adds analyzers in order.
func (b *Builder) WithAnalyzers(analyzers ...Analyzer) *Builder {
	b.analyzers = append(b.analyzers, analyzers...)

	return b
}

// WithFilters adds element filters in order.
func (b *Builder) WithFilters(filters ...ElementFilter) *Builder {
	b.filters = append(b.filters, filters...)

	return b
}

// WithTransforms adds transforms in order.
func (b *Builder) WithTransforms(transforms ...Transform) *Builder {
	b.transforms = append(b.transforms, transforms...)

	return b
}

// WithReporters adds reporters in order.
func (b *Builder) WithReporters(reporters ...Reporter) *Builder {
	b.reporters = append(b.reporters, reporters...)

	return b
}

// WithRegistry drains an extension registry into the builder.
func (b *Builder) WithRegistry(r ExtensionRegistry) *Builder {
	b.analyzers = append(b.analyzers, r.Analyzers()...)
	b.filters = append(b.filters, r.Filters()...)
	b.transforms = append(b.transforms, r.Transforms()...)
	b.reporters = append(b.reporters, r.Reporters()...)

	return b
}

// WithObserver sets the progress observer.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.observer = o

	return b
}

// WithLogger sets the logger. Defaults to slog.Default.
func (b *Builder) WithLogger(log *slog.Logger) *Builder {
	b.log = log

	return b
}

// Build validates every extension's configuration namespace, then
// initializes reporters, analyzers, transforms, and filters, in that
// order. On an initialization failure the already initialized extensions
// are closed before the error is returned.
func (b *Builder) Build(ctx *AnalysisContext) (*Engine, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	if len(b.analyzers) == 0 {
		return nil, ErrNoAnalyzers
	}

	e := &Engine{
		analyzers:  b.analyzers,
		filters:    b.filters,
		transforms: b.transforms,
		reporters:  b.reporters,
		observer:   b.observer,
		log:        b.log,
	}

	ordered := e.extensions()

	for _, ext := range ordered {
		if err := validateConfiguration(ext, ctx); err != nil {
			return nil, err
		}
	}

	var initialized []Extension

	for _, ext := range ordered {
		if err := ext.Initialize(ctx); err != nil {
			closeAll(initialized, b.log)

			return nil, fmt.Errorf("initialize %s: %w", ext.ID(), err)
		}

		initialized = append(initialized, ext)
	}

	return e, nil
}

// Engine runs analyses over pairs of APIs. An Engine is single-threaded
// within one Analyze call; distinct engines are independent.
type Engine struct {
	analyzers  []Analyzer
	filters    []ElementFilter
	transforms []Transform
	reporters  []Reporter
	observer   Observer
	log        *slog.Logger
	closed     bool
}

// extensions lists all components in initialization order: reporters
// first, then analyzers, transforms, and filters.
func (e *Engine) extensions() []Extension {
	out := make([]Extension, 0,
		len(e.reporters)+len(e.analyzers)+len(e.transforms)+len(e.filters))

	for _, r := range e.reporters {
		out = append(out, r)
	}

	for _, a := range e.analyzers {
		out = append(out, a)
	}

	for _, t := range e.transforms {
		out = append(out, t)
	}

	for _, f := range e.filters {
		out = append(out, f)
	}

	return out
}

// Analyze runs every registered analyzer over the old/new API pair.
// Reports flow through the transform chain and are delivered to reporters
// in depth-first end-time order. Analyzer-scoped resources are closed on
// all exit paths; the first fatal failure aborts the run and propagates.
func (e *Engine) Analyze(ctx context.Context, oldAPI, newAPI *api.API) error {
	if oldAPI == nil || newAPI == nil {
		return ErrNilAPI
	}

	for _, a := range e.analyzers {
		e.log.Info("analysis started", "analyzer", a.ID())

		if err := e.runAnalyzer(ctx, a, oldAPI, newAPI); err != nil {
			return fmt.Errorf("analyzer %s: %w", a.ID(), err)
		}
	}

	return nil
}

func (e *Engine) runAnalyzer(ctx context.Context, a Analyzer, oldAPI, newAPI *api.API) (err error) {
	oldTree, err := a.AnalyzeArchives(ctx, oldAPI)
	if err != nil {
		return fmt.Errorf("analyze old archives: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(oldTree))

	newTree, err := a.AnalyzeArchives(ctx, newAPI)
	if err != nil {
		return fmt.Errorf("analyze new archives: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(newTree))

	da, err := a.DifferenceAnalyzer(oldTree, newTree)
	if err != nil {
		return fmt.Errorf("create difference analyzer: %w", err)
	}

	if err = da.Open(); err != nil {
		return fmt.Errorf("open difference analyzer: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(da))

	oldRoots, err := oldTree.Roots(ctx)
	if err != nil {
		return fmt.Errorf("build old tree: %w", err)
	}

	newRoots, err := newTree.Roots(ctx)
	if err != nil {
		return fmt.Errorf("build new tree: %w", err)
	}

	t := &traversal{
		analyzer: da,
		filters:  FilterSet(e.filters),
		sink:     e.dispatch,
		observer: e.observer,
	}

	return t.run(oldRoots, newRoots)
}

// dispatch routes one non-empty report through the transform chain and on
// to every reporter. Reports emptied by the transforms are dropped.
func (e *Engine) dispatch(report *api.Report) error {
	var onDrop func(*api.Difference)
	if e.observer != nil {
		onDrop = e.observer.DifferenceDropped
	}

	transformed, err := applyTransforms(e.transforms, report, onDrop)
	if err != nil {
		return err
	}

	if transformed.Empty() {
		return nil
	}

	for _, r := range e.reporters {
		if err := r.Report(transformed); err != nil {
			return fmt.Errorf("reporter %s: %w", r.ID(), err)
		}
	}

	if e.observer != nil {
		e.observer.ReportDelivered(transformed)
	}

	return nil
}

// Close tears down every extension in reverse initialization order.
// Close errors are aggregated; Close is idempotent.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	ordered := e.extensions()
	reversed := make([]Extension, 0, len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		reversed = append(reversed, ordered[i])
	}

	return closeExtensions(reversed)
}

func closeExtensions(exts []Extension) error {
	var err error
	for _, ext := range exts {
		if cerr := ext.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("close %s: %w", ext.ID(), cerr))
		}
	}

	return err
}

// closeAll is the best-effort cleanup path for a failed initialization.
// Failures here are logged at warn level and never re-raised.
func closeAll(exts []Extension, log *slog.Logger) {
	for i := len(exts) - 1; i >= 0; i-- {
		if cerr := exts[i].Close(); cerr != nil {
			log.Warn("extension close failed during cleanup", "extension", exts[i].ID(), "error", cerr)
		}
	}
}
