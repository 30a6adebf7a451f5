package reporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/engine"
)

// JSONID is the JSON reporter's extension ID.
const JSONID = "apidrift.reporter.json"

// reportDoc is the serialized shape of one report.
type reportDoc struct {
	OldElement  string          `json:"oldElement,omitempty"`
	NewElement  string          `json:"newElement,omitempty"`
	Differences []differenceDoc `json:"differences"`
}

type differenceDoc struct {
	Code            string            `json:"code"`
	Name            string            `json:"name,omitempty"`
	Description     string            `json:"description,omitempty"`
	Attachments     map[string]string `json:"attachments,omitempty"`
	Classifications map[string]string `json:"classifications,omitempty"`
}

// JSON accumulates reports and writes one JSON document at Close. The
// document is deterministic: reports keep delivery order and
// classification keys are emitted in sorted order by encoding/json.
type JSON struct {
	out  io.Writer
	docs []reportDoc
}

// NewJSON creates a JSON reporter writing to out.
func NewJSON(out io.Writer) *JSON {
	return &JSON{out: out}
}

// ID returns the reporter's extension ID.
func (j *JSON) ID() string { return JSONID }

// ConfigSchema declares no configuration.
func (j *JSON) ConfigSchema() string { return "" }

// Initialize is a no-op.
func (j *JSON) Initialize(*engine.AnalysisContext) error { return nil }

// Report buffers one report.
func (j *JSON) Report(r *api.Report) error {
	doc := reportDoc{Differences: make([]differenceDoc, 0, len(r.Differences()))}

	if r.OldElement() != nil {
		doc.OldElement = r.OldElement().FullName()
	}

	if r.NewElement() != nil {
		doc.NewElement = r.NewElement().FullName()
	}

	for _, d := range r.Differences() {
		classifications := map[string]string{}

		for _, dim := range api.Compatibilities {
			if s := d.Classification(dim); s != api.SeverityNone {
				classifications[dim.String()] = s.String()
			}
		}

		doc.Differences = append(doc.Differences, differenceDoc{
			Code:            d.Code(),
			Name:            d.Name(),
			Description:     d.Description(),
			Attachments:     d.Attachments(),
			Classifications: classifications,
		})
	}

	j.docs = append(j.docs, doc)

	return nil
}

// Close writes the accumulated document.
func (j *JSON) Close() error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")

	if j.docs == nil {
		j.docs = []reportDoc{}
	}

	if err := enc.Encode(j.docs); err != nil {
		return fmt.Errorf("encode report document: %w", err)
	}

	return nil
}

var _ engine.Reporter = (*JSON)(nil)
