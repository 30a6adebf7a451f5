package engine

import (
	"fmt"

	"github.com/apidrift/apidrift/pkg/api"
)

// applyTransforms runs every difference of a report through the transform
// chain in registration order. The output of one transform is the input of
// the next; a nil return drops the difference. The surviving differences
// keep their relative order.
func applyTransforms(transforms []Transform, r *api.Report, onDrop func(*api.Difference)) (*api.Report, error) {
	if len(transforms) == 0 {
		return r, nil
	}

	oldEl, newEl := r.OldElement(), r.NewElement()
	kept := make([]*api.Difference, 0, len(r.Differences()))

	for _, d := range r.Differences() {
		current := d

		for _, t := range transforms {
			next, err := t.Apply(oldEl, newEl, current)
			if err != nil {
				return nil, fmt.Errorf("transform %s: %w", t.ID(), err)
			}

			current = next
			if current == nil {
				break
			}
		}

		if current == nil {
			if onDrop != nil {
				onDrop(d)
			}

			continue
		}

		kept = append(kept, current)
	}

	return api.NewReport(oldEl, newEl, kept), nil
}
