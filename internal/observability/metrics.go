// Package observability instruments analysis runs with OpenTelemetry
// metrics and optionally serves them over a Prometheus scrape endpoint
// for long-running CI use.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/apidrift/apidrift/pkg/api"
)

const (
	metricPairsAnalyzed      = "apidrift.pairs.analyzed"
	metricDifferencesTotal   = "apidrift.differences.total"
	metricDifferencesDropped = "apidrift.differences.dropped"
	metricReportsDelivered   = "apidrift.reports.delivered"

	attrSeverity = "severity"
)

// AnalysisMetrics is an engine.Observer that counts traversal progress.
type AnalysisMetrics struct {
	pairsAnalyzed      metric.Int64Counter
	differencesTotal   metric.Int64Counter
	differencesDropped metric.Int64Counter
	reportsDelivered   metric.Int64Counter
}

// NewAnalysisMetrics registers the analysis instruments on the meter.
func NewAnalysisMetrics(mt metric.Meter) (*AnalysisMetrics, error) {
	pairs, err := mt.Int64Counter(metricPairsAnalyzed,
		metric.WithDescription("Element pairs analyzed"), metric.WithUnit("{pair}"))
	if err != nil {
		return nil, fmt.Errorf("create pairs counter: %w", err)
	}

	diffs, err := mt.Int64Counter(metricDifferencesTotal,
		metric.WithDescription("Differences delivered, by max severity"), metric.WithUnit("{difference}"))
	if err != nil {
		return nil, fmt.Errorf("create differences counter: %w", err)
	}

	dropped, err := mt.Int64Counter(metricDifferencesDropped,
		metric.WithDescription("Differences dropped by transforms"), metric.WithUnit("{difference}"))
	if err != nil {
		return nil, fmt.Errorf("create dropped counter: %w", err)
	}

	reports, err := mt.Int64Counter(metricReportsDelivered,
		metric.WithDescription("Non-empty reports delivered to reporters"), metric.WithUnit("{report}"))
	if err != nil {
		return nil, fmt.Errorf("create reports counter: %w", err)
	}

	return &AnalysisMetrics{
		pairsAnalyzed:      pairs,
		differencesTotal:   diffs,
		differencesDropped: dropped,
		reportsDelivered:   reports,
	}, nil
}

// PairAnalyzed counts one finished pair.
func (m *AnalysisMetrics) PairAnalyzed(api.Element, api.Element) {
	m.pairsAnalyzed.Add(context.Background(), 1)
}

// DifferenceDropped counts one transform drop.
func (m *AnalysisMetrics) DifferenceDropped(*api.Difference) {
	m.differencesDropped.Add(context.Background(), 1)
}

// ReportDelivered counts a delivered report and its differences by max
// severity.
func (m *AnalysisMetrics) ReportDelivered(r *api.Report) {
	ctx := context.Background()
	m.reportsDelivered.Add(ctx, 1)

	for _, d := range r.Differences() {
		m.differencesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String(attrSeverity, d.MaxSeverity().String()),
		))
	}
}
