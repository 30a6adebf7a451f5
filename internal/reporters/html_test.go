package reporters_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/apidrift/apidrift/internal/reporters"
	"github.com/apidrift/apidrift/pkg/engine"
)

func TestHTML_WritesConfiguredOutput(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "report.html")

	r := reporters.NewHTML()
	ctx := engine.NewAnalysisContext(language.English, map[string]string{
		"apidrift.reporter.html.output": output,
	})
	require.NoError(t, r.Initialize(ctx))
	require.NoError(t, r.Report(sampleReport()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	page := string(data)
	assert.Contains(t, page, "entry.removed")
	assert.Contains(t, page, "Differences by severity")
}
