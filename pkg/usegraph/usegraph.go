// Package usegraph walks the directed graph formed by use-site back-edges
// between elements. The graph may contain cycles; traversal is iterative
// with an explicit visited set, never recursive.
package usegraph

import "github.com/apidrift/apidrift/pkg/api"

// PathToAPI searches from start along use-site edges for a sink: an
// element owned by one of the target API's primary archives. Only edges
// whose use type propagates API membership are followed. It returns the
// elements on one such path, start first and sink last, or false when no
// sink is reachable.
func PathToAPI(start api.Element, target *api.API) ([]api.Element, bool) {
	if start == nil {
		return nil, false
	}

	type node struct {
		element api.Element
		depth   int
	}

	visited := map[api.Element]struct{}{start: {}}
	path := []api.Element{}
	stack := []node{{element: start, depth: 0}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		path = append(path[:top.depth], top.element)

		if isSink(top.element, target) {
			out := make([]api.Element, len(path))
			copy(out, path)

			return out, true
		}

		for _, site := range top.element.UseSites() {
			if !site.Use.MovesToAPI() || site.Site == nil {
				continue
			}

			if _, seen := visited[site.Site]; seen {
				continue
			}

			visited[site.Site] = struct{}{}
			stack = append(stack, node{element: site.Site, depth: top.depth + 1})
		}
	}

	return nil, false
}

// MovesToAPI reports whether start is part of the target API, directly or
// transitively through membership-propagating uses.
func MovesToAPI(start api.Element, target *api.API) bool {
	_, ok := PathToAPI(start, target)

	return ok
}

func isSink(e api.Element, target *api.API) bool {
	archive := e.Archive()
	if archive == nil {
		return false
	}

	return target.IsPrimary(archive)
}
