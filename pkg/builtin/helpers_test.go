package builtin_test

import (
	"context"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// nopAnalyzer satisfies the builder's analyzer requirement in tests that
// only exercise filters and transforms.
type nopAnalyzer struct{}

func (a *nopAnalyzer) ID() string { return "test.nop" }

func (a *nopAnalyzer) ConfigSchema() string { return "" }

func (a *nopAnalyzer) Initialize(*engine.AnalysisContext) error { return nil }

func (a *nopAnalyzer) Close() error { return nil }

func (a *nopAnalyzer) AnalyzeArchives(context.Context, *api.API) (engine.TreeAnalyzer, error) {
	return nil, nil
}

func (a *nopAnalyzer) DifferenceAnalyzer(engine.TreeAnalyzer, engine.TreeAnalyzer) (engine.DifferenceAnalyzer, error) {
	return nil, nil
}
