// Package api defines the data model shared by every apidrift component:
// archives, element trees, use-sites, differences, and reports.
package api

import (
	"context"
	"io"
)

// Archive is an opaque handle to one unit of input. The engine never
// inspects archive content; analyzers do.
type Archive interface {
	// Name returns the archive's stable, human-readable name.
	Name() string

	// Open returns a reader over the archive bytes. The caller closes it.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// API is an immutable pair of archive sets: the primary archives being
// analyzed and the supplementary archives needed to resolve references.
type API struct {
	primary       []Archive
	supplementary []Archive
}

// NewAPI creates an API from primary and supplementary archive sets.
// Both slices are copied; nil slices are treated as empty.
func NewAPI(primary, supplementary []Archive) *API {
	a := &API{
		primary:       make([]Archive, len(primary)),
		supplementary: make([]Archive, len(supplementary)),
	}
	copy(a.primary, primary)
	copy(a.supplementary, supplementary)

	return a
}

// Archives returns the primary archive set in registration order.
func (a *API) Archives() []Archive {
	out := make([]Archive, len(a.primary))
	copy(out, a.primary)

	return out
}

// Supplementary returns the supplementary archive set in registration order.
func (a *API) Supplementary() []Archive {
	out := make([]Archive, len(a.supplementary))
	copy(out, a.supplementary)

	return out
}

// IsPrimary reports whether the given archive belongs to the primary set.
func (a *API) IsPrimary(archive Archive) bool {
	for _, p := range a.primary {
		if p == archive {
			return true
		}
	}

	return false
}
