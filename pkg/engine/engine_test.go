package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

func emptyContext() *engine.AnalysisContext {
	return engine.NewAnalysisContext(language.English, nil)
}

func buildEngine(t *testing.T, b *engine.Builder) *engine.Engine {
	t.Helper()

	eng, err := b.Build(emptyContext())
	require.NoError(t, err)

	return eng
}

func TestBuild_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := engine.NewBuilder().Build(nil)
	require.ErrorIs(t, err, engine.ErrNilContext)

	_, err = engine.NewBuilder().Build(emptyContext())
	require.ErrorIs(t, err, engine.ErrNoAnalyzers)
}

func TestAnalyze_NilAPI(t *testing.T) {
	t.Parallel()

	da := &recordingDA{}
	analyzer := &scriptedAnalyzer{fakeExtension: fakeExtension{id: "a"}, da: da}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer))
	defer eng.Close()

	err := eng.Analyze(context.Background(), nil, api.NewAPI(nil, nil))
	require.ErrorIs(t, err, engine.ErrNilAPI)
}

// Scenario: old roots [a, c], new roots [a, b, c]; the analyzer emits
// ADDED for the unmatched new element. Matched pairs produce empty
// reports, which never reach the reporter.
func TestAnalyze_AddedElement(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	da := &recordingDA{emit: map[string][]*api.Difference{
		"-/b": {diff("ADDED")},
	}}

	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "a"), el(oldAPI, api.KindType, "c")),
			newAPI: roots(el(newAPI, api.KindType, "a"), el(newAPI, api.KindType, "b"), el(newAPI, api.KindType, "c")),
		},
	}

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer).WithReporters(reporter))
	defer eng.Close()

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

	assert.Equal(t, []string{"-/b"}, reporter.deliveredKeys())
	assert.Equal(t, []string{"ADDED"}, reporter.deliveredCodes())
	assert.Equal(t, 1, da.opened)
	assert.Equal(t, 1, da.closed)
}

// Scenario: a removed child is reported before its parent, and begin/end
// calls pair up in LIFO order.
func TestAnalyze_DeliveryOrderAndPairing(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	da := &recordingDA{emit: map[string][]*api.Difference{
		"x.m/-": {diff("FIELD_REMOVED")},
	}}

	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "x",
				el(oldAPI, api.KindField, "m"),
				el(oldAPI, api.KindMethod, "n"))),
			newAPI: roots(el(newAPI, api.KindType, "x",
				el(newAPI, api.KindMethod, "n"))),
		},
	}

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer).WithReporters(reporter))
	defer eng.Close()

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

	// The child report is delivered; the parent's empty report is not.
	assert.Equal(t, []string{"x.m/-"}, reporter.deliveredKeys())

	expected := []string{
		"begin x/x",
		"begin x.m/-",
		"end x.m/-",
		"begin x.n/x.n",
		"end x.n/x.n",
		"end x/x",
	}
	assert.Equal(t, expected, da.events, fmtEvents(da.events))
}

// Scenario: transform chain [drop X, rename Y->Z] applied to [X, Y]
// delivers [Z].
func TestAnalyze_TransformChain(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	da := &recordingDA{emit: map[string][]*api.Difference{
		"t/t": {diff("X"), diff("Y")},
	}}

	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "t")),
			newAPI: roots(el(newAPI, api.KindType, "t")),
		},
	}

	dropX := &funcTransform{
		fakeExtension: fakeExtension{id: "t1"},
		apply: func(d *api.Difference) (*api.Difference, error) {
			if d.Code() == "X" {
				return nil, nil
			}

			return d, nil
		},
	}

	renameY := &funcTransform{
		fakeExtension: fakeExtension{id: "t2"},
		apply: func(d *api.Difference) (*api.Difference, error) {
			if d.Code() == "Y" {
				return api.From(d).WithCode("Z").Build(), nil
			}

			return d, nil
		},
	}

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

	eng := buildEngine(t, engine.NewBuilder().
		WithAnalyzers(analyzer).
		WithTransforms(dropX, renameY).
		WithReporters(reporter))
	defer eng.Close()

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

	assert.Equal(t, []string{"Z"}, reporter.deliveredCodes())
}

// An identity transform must deliver the very same difference records.
func TestAnalyze_IdentityTransformKeepsDifferences(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	original := diff("KEPT")

	da := &recordingDA{emit: map[string][]*api.Difference{
		"t/t": {original},
	}}

	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "t")),
			newAPI: roots(el(newAPI, api.KindType, "t")),
		},
	}

	identity := &funcTransform{
		fakeExtension: fakeExtension{id: "t1"},
		apply:         func(d *api.Difference) (*api.Difference, error) { return d, nil },
	}

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

	eng := buildEngine(t, engine.NewBuilder().
		WithAnalyzers(analyzer).
		WithTransforms(identity).
		WithReporters(reporter))
	defer eng.Close()

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

	require.Len(t, reporter.reports, 1)
	require.Len(t, reporter.reports[0].Differences(), 1)
	assert.Same(t, original, reporter.reports[0].Differences()[0])
}

// Scenario: f1 rejects names starting with "_"; f2 forbids descent into
// "opaque". The _tmp pair is not analyzed and opaque's children are not
// traversed.
func TestAnalyze_FilterConjunction(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	build := func(owner *api.API) []api.Element {
		return roots(
			el(owner, api.KindType, "_tmp"),
			el(owner, api.KindType, "opaque", el(owner, api.KindMethod, "hidden")),
			el(owner, api.KindType, "plain", el(owner, api.KindMethod, "m")),
		)
	}

	da := &recordingDA{}
	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: build(oldAPI),
			newAPI: build(newAPI),
		},
	}

	f1 := &prefixFilter{fakeExtension: fakeExtension{id: "f1"}, rejectPrefix: "_"}
	f2 := &prefixFilter{fakeExtension: fakeExtension{id: "f2"}, opaqueName: "opaque"}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer).WithFilters(f1, f2))
	defer eng.Close()

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

	assert.NotContains(t, da.events, "begin _tmp/_tmp")
	assert.Contains(t, da.events, "begin opaque/opaque")
	assert.NotContains(t, da.events, "begin opaque.hidden/opaque.hidden")
	assert.Contains(t, da.events, "begin plain.m/plain.m")
}

// Scenario: two analyzers; all of the first's reports are delivered
// before the second starts, and Close reaches both. The failure case is
// covered by TestAnalyze_FailureClosesResources.
func TestAnalyze_TwoAnalyzers(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	makeAnalyzer := func(id, rootName string) (*scriptedAnalyzer, *recordingDA) {
		da := &recordingDA{emit: map[string][]*api.Difference{
			rootName + "/" + rootName: {diff(id + ".diff")},
		}}

		return &scriptedAnalyzer{
			fakeExtension: fakeExtension{id: id},
			da:            da,
			forests: map[*api.API][]api.Element{
				oldAPI: roots(el(oldAPI, api.KindType, rootName)),
				newAPI: roots(el(newAPI, api.KindType, rootName)),
			},
		}, da
	}

	a1, _ := makeAnalyzer("a1", "one")
	a2, _ := makeAnalyzer("a2", "two")
	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(a1, a2).WithReporters(reporter))

	require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))
	assert.Equal(t, []string{"a1.diff", "a2.diff"}, reporter.deliveredCodes())

	require.NoError(t, eng.Close())
	assert.Equal(t, 1, a1.closed)
	assert.Equal(t, 1, a2.closed)
}

func TestAnalyze_FailureClosesResources(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	boom := errors.New("boom")
	da := &recordingDA{beginErr: boom}

	a1 := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a1"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "one")),
			newAPI: roots(el(newAPI, api.KindType, "one")),
		},
	}
	a2 := &scriptedAnalyzer{fakeExtension: fakeExtension{id: "a2"}, da: &recordingDA{}}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(a1, a2))

	err := eng.Analyze(context.Background(), oldAPI, newAPI)
	require.ErrorIs(t, err, boom)

	// The difference analyzer and both trees of the failing run were
	// closed despite the error.
	assert.Equal(t, 1, da.closed)
	assert.Equal(t, 2, a1.treesClosed)

	// Extension teardown still reaches every analyzer.
	require.NoError(t, eng.Close())
	assert.Equal(t, 1, a1.closed)
	assert.Equal(t, 1, a2.closed)
}

func TestAnalyze_AnalyzerFailurePropagates(t *testing.T) {
	t.Parallel()

	ioErr := errors.New("corrupt archive")
	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            &recordingDA{},
		analyzeErr:    ioErr,
	}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer))
	defer eng.Close()

	err := eng.Analyze(context.Background(), api.NewAPI(nil, nil), api.NewAPI(nil, nil))
	require.ErrorIs(t, err, ioErr)
}

func TestAnalyze_UnorderedSiblingsRejected(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	dup := el(oldAPI, api.KindType, "a")
	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            &recordingDA{},
		forests: map[*api.API][]api.Element{
			oldAPI: []api.Element{dup, el(oldAPI, api.KindType, "a")},
			newAPI: nil,
		},
	}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer))
	defer eng.Close()

	err := eng.Analyze(context.Background(), oldAPI, newAPI)
	require.ErrorIs(t, err, engine.ErrUnorderedSiblings)
}

func TestAnalyze_ReporterFailureAborts(t *testing.T) {
	t.Parallel()

	oldAPI := api.NewAPI(nil, nil)
	newAPI := api.NewAPI(nil, nil)

	da := &recordingDA{emit: map[string][]*api.Difference{
		"t/t": {diff("D")},
	}}

	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a"},
		da:            da,
		forests: map[*api.API][]api.Element{
			oldAPI: roots(el(oldAPI, api.KindType, "t")),
			newAPI: roots(el(newAPI, api.KindType, "t")),
		},
	}

	broken := errors.New("sink full")
	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}, reportErr: broken}

	eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer).WithReporters(reporter))
	defer eng.Close()

	err := eng.Analyze(context.Background(), oldAPI, newAPI)
	require.ErrorIs(t, err, broken)
	assert.Equal(t, 1, da.closed)
}

func TestBuild_InitializationFailureClosesInitialized(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}
	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{id: "a", initErr: errors.New("bad config")},
		da:            &recordingDA{},
	}

	_, err := engine.NewBuilder().
		WithAnalyzers(analyzer).
		WithReporters(reporter).
		Build(emptyContext())
	require.Error(t, err)

	// Reporters initialize first, so the reporter was up and got closed
	// again on the cleanup path.
	assert.Equal(t, 1, reporter.initialized)
	assert.Equal(t, 1, reporter.closed)
}

func TestBuild_SchemaValidationRunsBeforeInitialize(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}
	analyzer := &scriptedAnalyzer{
		fakeExtension: fakeExtension{
			id:     "strict",
			schema: `{"type":"object","properties":{"mode":{"type":"string","enum":["fast","slow"]}},"additionalProperties":false}`,
		},
		da: &recordingDA{},
	}

	ctx := engine.NewAnalysisContext(language.English, map[string]string{
		"strict.mode": "warp",
	})

	_, err := engine.NewBuilder().
		WithAnalyzers(analyzer).
		WithReporters(reporter).
		Build(ctx)
	require.ErrorIs(t, err, engine.ErrInvalidConfiguration)

	assert.Zero(t, reporter.initialized)
	assert.Zero(t, analyzer.initialized)
}

// Two runs over the same trees with the same component set produce the
// identical report sequence.
func TestAnalyze_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() ([]string, []string) {
		oldAPI := api.NewAPI(nil, nil)
		newAPI := api.NewAPI(nil, nil)

		da := &recordingDA{emit: map[string][]*api.Difference{
			"x.m/-": {diff("REMOVED")},
			"-/y":   {diff("ADDED")},
		}}

		analyzer := &scriptedAnalyzer{
			fakeExtension: fakeExtension{id: "a"},
			da:            da,
			forests: map[*api.API][]api.Element{
				oldAPI: roots(el(oldAPI, api.KindType, "x", el(oldAPI, api.KindField, "m"))),
				newAPI: roots(el(newAPI, api.KindType, "x"), el(newAPI, api.KindType, "y")),
			},
		}

		reporter := &recordingReporter{fakeExtension: fakeExtension{id: "r"}}

		eng := buildEngine(t, engine.NewBuilder().WithAnalyzers(analyzer).WithReporters(reporter))
		defer eng.Close()

		require.NoError(t, eng.Analyze(context.Background(), oldAPI, newAPI))

		return reporter.deliveredKeys(), reporter.deliveredCodes()
	}

	keys1, codes1 := run()
	keys2, codes2 := run()

	assert.Empty(t, cmp.Diff(keys1, keys2))
	assert.Empty(t, cmp.Diff(codes1, codes2))
}
