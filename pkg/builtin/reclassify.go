package builtin

import (
	"fmt"
	"regexp"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// ReclassifyID is the reclassify transform's extension ID and
// configuration namespace.
const ReclassifyID = "apidrift.reclassify"

// Reclassify is a transform that overrides the severity of matching
// differences:
//
//	apidrift.reclassify.code      regex over difference codes (required to act)
//	apidrift.reclassify.severity  NONE | NON_BREAKING | POTENTIALLY_BREAKING | BREAKING
//	apidrift.reclassify.dimension SOURCE | BINARY | SEMANTIC | OTHER | ALL (default ALL)
//
// Matching differences are replaced with a copy carrying the overridden
// classification; everything else passes through untouched.
type Reclassify struct {
	code       *regexp.Regexp
	severity   api.Severity
	dimensions []api.Compatibility
}

// NewReclassify creates an unconfigured reclassify transform.
func NewReclassify() *Reclassify { return &Reclassify{} }

// ID returns the transform's extension ID.
func (r *Reclassify) ID() string { return ReclassifyID }

// ConfigSchema declares the transform's configuration namespace.
func (r *Reclassify) ConfigSchema() string {
	return `{
		"type": "object",
		"properties": {
			"code": {"type": "string", "format": "regex"},
			"severity": {
				"type": "string",
				"enum": ["NONE", "NON_BREAKING", "POTENTIALLY_BREAKING", "BREAKING"]
			},
			"dimension": {
				"type": "string",
				"enum": ["SOURCE", "BINARY", "SEMANTIC", "OTHER", "ALL"]
			}
		},
		"additionalProperties": false
	}`
}

// Initialize compiles the code regex and parses the target severity and
// dimensions.
func (r *Reclassify) Initialize(ctx *engine.AnalysisContext) error {
	ns := ctx.Namespace(ReclassifyID)

	var err error

	if r.code, err = compileOptional(ns["code"]); err != nil {
		return fmt.Errorf("%s.code: %w", ReclassifyID, err)
	}

	if r.code == nil {
		return nil
	}

	if r.severity, err = api.ParseSeverity(ns["severity"]); err != nil {
		return fmt.Errorf("%s.severity: %w", ReclassifyID, err)
	}

	dimension := ns["dimension"]
	if dimension == "" || dimension == "ALL" {
		r.dimensions = api.Compatibilities

		return nil
	}

	parsed, err := api.ParseCompatibility(dimension)
	if err != nil {
		return fmt.Errorf("%s.dimension: %w", ReclassifyID, err)
	}

	r.dimensions = []api.Compatibility{parsed}

	return nil
}

// Apply replaces matching differences with reclassified copies.
func (r *Reclassify) Apply(_, _ api.Element, d *api.Difference) (*api.Difference, error) {
	if r.code == nil || !r.code.MatchString(d.Code()) {
		return d, nil
	}

	builder := api.From(d)
	for _, dim := range r.dimensions {
		builder = builder.WithClassification(dim, r.severity)
	}

	return builder.Build(), nil
}

// Close is a no-op.
func (r *Reclassify) Close() error { return nil }

var _ engine.Transform = (*Reclassify)(nil)
