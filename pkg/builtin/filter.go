// Package builtin carries the extensions that ship with the engine: a
// configurable element filter, a difference-ignoring transform, and a
// severity-reclassifying transform. All three are driven purely by
// configuration and work with any analyzer.
package builtin

import (
	"fmt"
	"regexp"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// FilterID is the configurable filter's extension ID and configuration
// namespace.
const FilterID = "apidrift.filter"

// Filter is an engine.ElementFilter driven by full-name regexes:
//
//	apidrift.filter.include         only elements matching are analyzed
//	apidrift.filter.exclude         matching elements are not analyzed
//	apidrift.filter.descend.exclude matching elements are not descended into
//
// Unset keys impose no constraint. Alternation covers lists: "a|b".
type Filter struct {
	include        *regexp.Regexp
	exclude        *regexp.Regexp
	descendExclude *regexp.Regexp
}

// NewFilter creates an unconfigured filter.
func NewFilter() *Filter { return &Filter{} }

// ID returns the filter's extension ID.
func (f *Filter) ID() string { return FilterID }

// ConfigSchema declares the filter's configuration namespace.
func (f *Filter) ConfigSchema() string {
	return `{
		"type": "object",
		"properties": {
			"include": {"type": "string", "format": "regex"},
			"exclude": {"type": "string", "format": "regex"},
			"descend.exclude": {"type": "string", "format": "regex"}
		},
		"additionalProperties": false
	}`
}

// Initialize compiles the configured regexes.
func (f *Filter) Initialize(ctx *engine.AnalysisContext) error {
	ns := ctx.Namespace(FilterID)

	var err error

	if f.include, err = compileOptional(ns["include"]); err != nil {
		return fmt.Errorf("%s.include: %w", FilterID, err)
	}

	if f.exclude, err = compileOptional(ns["exclude"]); err != nil {
		return fmt.Errorf("%s.exclude: %w", FilterID, err)
	}

	if f.descendExclude, err = compileOptional(ns["descend.exclude"]); err != nil {
		return fmt.Errorf("%s.descend.exclude: %w", FilterID, err)
	}

	return nil
}

// Applies reports whether the element passes include and exclude.
func (f *Filter) Applies(e api.Element) bool {
	name := e.FullName()

	if f.include != nil && !f.include.MatchString(name) {
		return false
	}

	if f.exclude != nil && f.exclude.MatchString(name) {
		return false
	}

	return true
}

// DescendsInto reports whether the element's subtree is traversed.
func (f *Filter) DescendsInto(e api.Element) bool {
	return f.descendExclude == nil || !f.descendExclude.MatchString(e.FullName())
}

// Close is a no-op.
func (f *Filter) Close() error { return nil }

func compileOptional(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}

	return regexp.Compile(pattern)
}

var _ engine.ElementFilter = (*Filter)(nil)
