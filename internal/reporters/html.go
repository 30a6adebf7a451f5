package reporters

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// HTMLID is the HTML reporter's extension ID and configuration namespace.
const HTMLID = "apidrift.reporter.html"

// defaultHTMLOutput is written when no output path is configured.
const defaultHTMLOutput = "apidrift-report.html"

// HTML accumulates differences and writes a report page at Close: a bar
// chart of difference counts by severity per compatibility dimension,
// followed by a plain table of every difference.
//
//	apidrift.reporter.html.output  target file path
type HTML struct {
	output string
	rows   []htmlRow
	counts map[api.Compatibility]map[api.Severity]int
}

type htmlRow struct {
	pair        string
	code        string
	severity    api.Severity
	description string
}

// NewHTML creates an HTML reporter; the output path is taken from
// configuration at initialization.
func NewHTML() *HTML {
	return &HTML{counts: map[api.Compatibility]map[api.Severity]int{}}
}

// ID returns the reporter's extension ID.
func (h *HTML) ID() string { return HTMLID }

// ConfigSchema declares the reporter's configuration namespace.
func (h *HTML) ConfigSchema() string {
	return `{
		"type": "object",
		"properties": {
			"output": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}`
}

// Initialize reads the output path.
func (h *HTML) Initialize(ctx *engine.AnalysisContext) error {
	h.output = ctx.Namespace(HTMLID)["output"]
	if h.output == "" {
		h.output = defaultHTMLOutput
	}

	return nil
}

// Report buffers one report's differences.
func (h *HTML) Report(r *api.Report) error {
	pair := pairLabel(r)

	for _, d := range r.Differences() {
		h.rows = append(h.rows, htmlRow{
			pair:        pair,
			code:        d.Code(),
			severity:    d.MaxSeverity(),
			description: d.Description(),
		})

		for _, dim := range api.Compatibilities {
			s := d.Classification(dim)
			if s == api.SeverityNone {
				continue
			}

			if h.counts[dim] == nil {
				h.counts[dim] = map[api.Severity]int{}
			}

			h.counts[dim][s]++
		}
	}

	return nil
}

// Close renders the page.
func (h *HTML) Close() error {
	f, err := os.Create(h.output)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	defer f.Close()

	if err := h.severityChart().Render(f); err != nil {
		return fmt.Errorf("render severity chart: %w", err)
	}

	if _, err := f.WriteString(h.differenceTable()); err != nil {
		return fmt.Errorf("write difference table: %w", err)
	}

	return nil
}

func (h *HTML) severityChart() *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Differences by severity"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)

	labels := make([]string, 0, len(api.Compatibilities))
	for _, dim := range api.Compatibilities {
		labels = append(labels, dim.String())
	}

	bar.SetXAxis(labels)

	severities := []api.Severity{api.SeverityNonBreaking, api.SeverityPotentiallyBreaking, api.SeverityBreaking}
	for _, s := range severities {
		data := make([]opts.BarData, 0, len(api.Compatibilities))
		for _, dim := range api.Compatibilities {
			data = append(data, opts.BarData{Value: h.counts[dim][s]})
		}

		bar.AddSeries(s.String(), data)
	}

	return bar
}

func (h *HTML) differenceTable() string {
	var b strings.Builder

	b.WriteString("<table border=\"1\"><tr><th>Element</th><th>Code</th><th>Severity</th><th>Description</th></tr>\n")

	for _, row := range h.rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(row.pair),
			html.EscapeString(row.code),
			row.severity.String(),
			html.EscapeString(row.description))
	}

	b.WriteString("</table>\n")

	return b.String()
}

var _ engine.Reporter = (*HTML)(nil)
