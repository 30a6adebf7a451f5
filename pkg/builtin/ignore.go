package builtin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// IgnoreID is the ignore transform's extension ID and configuration
// namespace.
const IgnoreID = "apidrift.ignore"

// Ignore is a transform that drops differences by code:
//
//	apidrift.ignore.codes              regex over difference codes
//	apidrift.ignore.attachment.<key>   regex the named attachment must also match
//
// A difference is dropped when its code matches and every configured
// attachment constraint matches. With no codes configured the transform
// keeps everything.
type Ignore struct {
	codes       *regexp.Regexp
	attachments map[string]*regexp.Regexp
}

// NewIgnore creates an unconfigured ignore transform.
func NewIgnore() *Ignore { return &Ignore{} }

// ID returns the transform's extension ID.
func (i *Ignore) ID() string { return IgnoreID }

// ConfigSchema declares the transform's configuration namespace.
func (i *Ignore) ConfigSchema() string {
	return `{
		"type": "object",
		"properties": {
			"codes": {"type": "string", "format": "regex"}
		},
		"patternProperties": {
			"^attachment\\.": {"type": "string", "format": "regex"}
		},
		"additionalProperties": false
	}`
}

// Initialize compiles the configured regexes.
func (i *Ignore) Initialize(ctx *engine.AnalysisContext) error {
	ns := ctx.Namespace(IgnoreID)

	var err error

	if i.codes, err = compileOptional(ns["codes"]); err != nil {
		return fmt.Errorf("%s.codes: %w", IgnoreID, err)
	}

	i.attachments = map[string]*regexp.Regexp{}

	for key, pattern := range ns {
		name, ok := strings.CutPrefix(key, "attachment.")
		if !ok {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", IgnoreID, key, err)
		}

		i.attachments[name] = re
	}

	return nil
}

// Apply drops matching differences and keeps the rest unchanged.
func (i *Ignore) Apply(_, _ api.Element, d *api.Difference) (*api.Difference, error) {
	if i.codes == nil || !i.codes.MatchString(d.Code()) {
		return d, nil
	}

	for name, re := range i.attachments {
		attachment, ok := d.Attachment(name)
		if !ok || !re.MatchString(attachment) {
			return d, nil
		}
	}

	return nil, nil
}

// Close is a no-op.
func (i *Ignore) Close() error { return nil }

var _ engine.Transform = (*Ignore)(nil)
