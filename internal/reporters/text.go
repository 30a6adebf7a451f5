// Package reporters provides the terminal consumers bundled with the
// apidrift CLI: a colored text table, a machine-readable JSON document,
// and an HTML page with a severity breakdown chart.
package reporters

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// TextID is the text reporter's extension ID.
const TextID = "apidrift.reporter.text"

// Text renders each report as a severity-colored table. Reports are
// written as they arrive, in delivery order.
type Text struct {
	out io.Writer
}

// NewText creates a text reporter writing to out.
func NewText(out io.Writer) *Text {
	return &Text{out: out}
}

// ID returns the reporter's extension ID.
func (t *Text) ID() string { return TextID }

// ConfigSchema declares no configuration.
func (t *Text) ConfigSchema() string { return "" }

// Initialize is a no-op.
func (t *Text) Initialize(*engine.AnalysisContext) error { return nil }

// Report renders one report.
func (t *Text) Report(r *api.Report) error {
	if _, err := fmt.Fprintf(t.out, "%s\n", pairLabel(r)); err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(t.out)
	tw.AppendHeader(table.Row{"Code", "Severity", "Description"})

	for _, d := range r.Differences() {
		tw.AppendRow(table.Row{
			d.Code(),
			colorSeverity(d.MaxSeverity()),
			d.Description(),
		})
	}

	tw.Render()

	_, err := fmt.Fprintln(t.out)

	return err
}

// Close is a no-op.
func (t *Text) Close() error { return nil }

func pairLabel(r *api.Report) string {
	switch {
	case r.OldElement() == nil:
		return "+ " + r.NewElement().FullName()
	case r.NewElement() == nil:
		return "- " + r.OldElement().FullName()
	default:
		return "  " + r.NewElement().FullName()
	}
}

func colorSeverity(s api.Severity) string {
	switch s {
	case api.SeverityBreaking:
		return color.New(color.FgRed, color.Bold).Sprint(s.String())
	case api.SeverityPotentiallyBreaking:
		return color.New(color.FgYellow).Sprint(s.String())
	case api.SeverityNonBreaking:
		return color.New(color.FgGreen).Sprint(s.String())
	case api.SeverityNone:
	}

	return s.String()
}

var _ engine.Reporter = (*Text)(nil)
