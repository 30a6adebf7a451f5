// Package messages resolves difference descriptions from message keys.
// The engine itself carries only machine codes; human text is produced
// here, per locale.
package messages

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Bundle maps (key, locale) to a format string. Lookup uses BCP-47
// language matching against the registered locales; an unknown key
// degrades to "key(args…)" instead of erroring, so a missing translation
// never aborts an analysis.
type Bundle struct {
	locales  []language.Tag
	catalogs map[language.Tag]map[string]string
	matcher  language.Matcher
}

// NewBundle creates a bundle whose first registered locale is the
// fallback.
func NewBundle() *Bundle {
	return &Bundle{catalogs: map[language.Tag]map[string]string{}}
}

// Add registers one message under a locale. Registering the first message
// of a locale makes that locale matchable.
func (b *Bundle) Add(locale language.Tag, key, format string) {
	catalog, ok := b.catalogs[locale]
	if !ok {
		catalog = map[string]string{}
		b.catalogs[locale] = catalog
		b.locales = append(b.locales, locale)
		b.matcher = language.NewMatcher(b.locales)
	}

	catalog[key] = format
}

// Resolve formats the message for the key under the best-matching locale.
func (b *Bundle) Resolve(key string, locale language.Tag, args ...any) string {
	if b.matcher != nil {
		_, index, _ := b.matcher.Match(locale)
		if format, ok := b.catalogs[b.locales[index]][key]; ok {
			return fmt.Sprintf(format, args...)
		}
	}

	if len(args) == 0 {
		return key
	}

	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}

	return key + "(" + strings.Join(parts, ", ") + ")"
}

// Default returns the bundle with the built-in English catalog for the
// bundled checks.
func Default() *Bundle {
	b := NewBundle()

	for key, format := range englishCatalog {
		b.Add(language.English, key, format)
	}

	return b
}

var englishCatalog = map[string]string{
	"entry.added":             "entry %q was added",
	"entry.removed":           "entry %q was removed",
	"entry.content.changed":   "content of entry %q changed",
	"entry.attribute.changed": "attribute %q changed from %q to %q",
	"entry.meta.changed":      "metadata %q changed",
	"entry.meta.added":        "metadata %q was added",
	"entry.meta.removed":      "metadata %q was removed",
}
