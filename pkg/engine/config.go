package engine

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/language"
)

// ErrInvalidConfiguration is returned when an extension's configuration
// namespace fails its declared schema.
var ErrInvalidConfiguration = errors.New("invalid extension configuration")

// AnalysisContext is the immutable configuration handed to every component
// at initialization: a locale plus a flat string-to-string mapping.
// Components interpret their own dot-separated namespaces; the engine
// reserves no keys and performs no schema validation beyond what the
// extensions themselves declare.
type AnalysisContext struct {
	locale language.Tag
	config map[string]string
}

// NewAnalysisContext creates a context with the given locale and
// configuration. The map is copied; nil behaves as empty.
func NewAnalysisContext(locale language.Tag, config map[string]string) *AnalysisContext {
	return &AnalysisContext{
		locale: locale,
		config: maps.Clone(config),
	}
}

// Locale returns the locale for message formatting.
func (c *AnalysisContext) Locale() language.Tag { return c.locale }

// Value looks up a single configuration key.
func (c *AnalysisContext) Value(key string) (string, bool) {
	v, ok := c.config[key]

	return v, ok
}

// Namespace returns all keys under the given dot prefix, with the prefix
// stripped. A missing namespace behaves as an empty mapping.
func (c *AnalysisContext) Namespace(prefix string) map[string]string {
	out := map[string]string{}
	p := prefix + "."

	for k, v := range c.config {
		if rest, ok := strings.CutPrefix(k, p); ok {
			out[rest] = v
		}
	}

	return out
}

// validateConfiguration checks one extension's configuration namespace
// against its declared JSON schema. Extensions without a schema accept
// anything.
func validateConfiguration(ext Extension, ctx *AnalysisContext) error {
	schema := ext.ConfigSchema()
	if schema == "" {
		return nil
	}

	ns := ctx.Namespace(ext.ID())
	doc := make(map[string]any, len(ns))
	for k, v := range ns {
		doc[k] = v
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate configuration of %s: %w", ext.ID(), err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}

		return fmt.Errorf("%w: %s: %s", ErrInvalidConfiguration, ext.ID(), strings.Join(msgs, "; "))
	}

	return nil
}
