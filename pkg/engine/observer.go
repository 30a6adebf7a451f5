package engine

import "github.com/apidrift/apidrift/pkg/api"

// Observer receives engine progress callbacks. Observers are for
// instrumentation only: they must not mutate what they are handed, and
// their errors are not modeled; a misbehaving observer panics the
// analysis like any other programmer error.
type Observer interface {
	// PairAnalyzed fires after one element pair's analysis ends.
	PairAnalyzed(oldElement, newElement api.Element)

	// DifferenceDropped fires when the transform chain drops a
	// difference.
	DifferenceDropped(d *api.Difference)

	// ReportDelivered fires after a non-empty report has been handed to
	// every reporter.
	ReportDelivered(r *api.Report)
}
