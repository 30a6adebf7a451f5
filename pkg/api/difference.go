package api

import "maps"

// Difference is an immutable record describing one API change. It carries
// a stable machine code, a human name, a locale-dependent description,
// free-form string attachments, and a classification per compatibility
// dimension. Differences never mutate after construction; transforms
// produce replacements instead.
type Difference struct {
	code            string
	name            string
	description     string
	attachments     map[string]string
	classifications map[Compatibility]Severity
}

// Code returns the stable machine code of the difference. Codes form the
// external contract for downstream filtering and must stay stable across
// releases once published.
func (d *Difference) Code() string { return d.code }

// Name returns the short human name of the difference.
func (d *Difference) Name() string { return d.name }

// Description returns the formatted, locale-dependent description.
func (d *Difference) Description() string { return d.description }

// Attachment looks up a single attachment by key.
func (d *Difference) Attachment(key string) (string, bool) {
	v, ok := d.attachments[key]

	return v, ok
}

// Attachments returns a copy of all attachments.
func (d *Difference) Attachments() map[string]string {
	return maps.Clone(d.attachments)
}

// Classification returns the severity in the given dimension.
// Unclassified dimensions are SeverityNone.
func (d *Difference) Classification(c Compatibility) Severity {
	return d.classifications[c]
}

// Classifications returns a copy of the full classification map.
func (d *Difference) Classifications() map[Compatibility]Severity {
	return maps.Clone(d.classifications)
}

// MaxSeverity returns the highest severity across all dimensions.
func (d *Difference) MaxSeverity() Severity {
	max := SeverityNone
	for _, s := range d.classifications {
		if s > max {
			max = s
		}
	}

	return max
}

// DifferenceBuilder assembles an immutable Difference.
type DifferenceBuilder struct {
	d Difference
}

// NewDifference starts building a difference with the given machine code.
func NewDifference(code string) *DifferenceBuilder {
	return &DifferenceBuilder{d: Difference{
		code:            code,
		attachments:     map[string]string{},
		classifications: map[Compatibility]Severity{},
	}}
}

// From starts a builder seeded with a copy of an existing difference.
// Transforms use this to produce amended replacements.
func From(d *Difference) *DifferenceBuilder {
	return &DifferenceBuilder{d: Difference{
		code:            d.code,
		name:            d.name,
		description:     d.description,
		attachments:     maps.Clone(d.attachments),
		classifications: maps.Clone(d.classifications),
	}}
}

// WithCode replaces the machine code.
func (b *DifferenceBuilder) WithCode(code string) *DifferenceBuilder {
	b.d.code = code

	return b
}

// WithName sets the human name.
func (b *DifferenceBuilder) WithName(name string) *DifferenceBuilder {
	b.d.name = name

	return b
}

// WithDescription sets the formatted description.
func (b *DifferenceBuilder) WithDescription(description string) *DifferenceBuilder {
	b.d.description = description

	return b
}

// WithAttachment adds one attachment.
func (b *DifferenceBuilder) WithAttachment(key, value string) *DifferenceBuilder {
	b.d.attachments[key] = value

	return b
}

// WithClassification sets the severity in one dimension.
func (b *DifferenceBuilder) WithClassification(c Compatibility, s Severity) *DifferenceBuilder {
	b.d.classifications[c] = s

	return b
}

// Build finalizes the difference. The builder must not be reused after
// Build; the built record owns the accumulated maps.
func (b *DifferenceBuilder) Build() *Difference {
	d := b.d
	b.d = Difference{}

	return &d
}
