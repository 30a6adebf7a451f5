package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/builtin"
	"github.com/apidrift/apidrift/pkg/engine"
)

func configured(t *testing.T, settings map[string]string) *engine.AnalysisContext {
	t.Helper()

	return engine.NewAnalysisContext(language.English, settings)
}

func typeElement(name string) api.Element {
	return api.NewSimpleElement(api.KindType, name, api.NewAPI(nil, nil), nil)
}

func TestFilter_Unconfigured(t *testing.T) {
	t.Parallel()

	f := builtin.NewFilter()
	require.NoError(t, f.Initialize(configured(t, nil)))

	assert.True(t, f.Applies(typeElement("anything")))
	assert.True(t, f.DescendsInto(typeElement("anything")))
}

func TestFilter_IncludeExclude(t *testing.T) {
	t.Parallel()

	f := builtin.NewFilter()
	require.NoError(t, f.Initialize(configured(t, map[string]string{
		"apidrift.filter.include": "^com\\.example\\.",
		"apidrift.filter.exclude": "Internal",
	})))

	assert.True(t, f.Applies(typeElement("com.example.Widget")))
	assert.False(t, f.Applies(typeElement("org.other.Widget")))
	assert.False(t, f.Applies(typeElement("com.example.InternalWidget")))
}

func TestFilter_DescendExclude(t *testing.T) {
	t.Parallel()

	f := builtin.NewFilter()
	require.NoError(t, f.Initialize(configured(t, map[string]string{
		"apidrift.filter.descend.exclude": "^opaque$",
	})))

	assert.True(t, f.Applies(typeElement("opaque")))
	assert.False(t, f.DescendsInto(typeElement("opaque")))
	assert.True(t, f.DescendsInto(typeElement("clear")))
}

func TestFilter_BadRegex(t *testing.T) {
	t.Parallel()

	f := builtin.NewFilter()
	err := f.Initialize(configured(t, map[string]string{
		"apidrift.filter.include": "([",
	}))
	require.Error(t, err)
}

func TestFilter_SchemaRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	analyzerStub := builtin.NewFilter()
	ctx := configured(t, map[string]string{
		"apidrift.filter.unknown": "x",
	})

	// Build-level validation is exercised through the engine; here we
	// only check the schema is well-formed and restrictive.
	require.NotEmpty(t, analyzerStub.ConfigSchema())

	_, err := engine.NewBuilder().
		WithAnalyzers(&nopAnalyzer{}).
		WithFilters(analyzerStub).
		Build(ctx)
	require.ErrorIs(t, err, engine.ErrInvalidConfiguration)
}
