// Package renderer serializes a template's document model to HTML and to
// the canonical JSON form that doubles as the at-rest representation.
// Rendering dispatches over the closed node type set through a single
// handler table; export never mutates the source template.
package renderer

import (
	"encoding/json"
	"fmt"

	"github.com/mailsmith/mailsmith/internal/interp"
	"github.com/mailsmith/mailsmith/internal/models"
)

// Format selects what an export call produces.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatBoth Format = "both"
)

// ExportOptions controls a single export call.
type ExportOptions struct {
	Format       Format
	InlineStyles bool // node styles as style attributes instead of a <style> block
	PrettyPrint  bool // indent the HTML output
	Data         map[string]interface{}
}

// Exporter renders templates. It is stateless across calls and safe to
// share; the interpolation engine it carries must be pure.
type Exporter struct {
	engine      *interp.Engine
	emitNodeIDs bool
}

// Option configures an Exporter at construction.
type Option func(*Exporter)

// WithNodeIDs enables data-node-id attributes on every rendered element so
// tooling can map output back to document nodes. Off by default; threaded
// in as explicit configuration rather than a process-wide toggle.
func WithNodeIDs(enabled bool) Option {
	return func(e *Exporter) { e.emitNodeIDs = enabled }
}

// NewExporter creates an exporter. A nil engine gets the built-in helpers.
func NewExporter(engine *interp.Engine, opts ...Option) *Exporter {
	if engine == nil {
		engine = interp.NewEngine(nil)
	}
	e := &Exporter{engine: engine}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export serializes the template per the options. The HTML walk interpolates
// every property value containing {{}} tokens against opts.Data, falling
// back to the template's sample data. Failure returns no partial output.
func (e *Exporter) Export(t *models.Template, opts ExportOptions) (*models.ExportResult, error) {
	if t == nil || t.Document == nil {
		return nil, fmt.Errorf("no template to export")
	}
	if opts.Format == "" {
		opts.Format = FormatHTML
	}

	result := &models.ExportResult{}

	if opts.Format == FormatHTML || opts.Format == FormatBoth {
		data := opts.Data
		if data == nil {
			data = t.SampleData
		}
		html, warnings, err := e.renderDocument(t, data, opts)
		if err != nil {
			return nil, err
		}
		result.HTML = html
		result.Warnings = append(result.Warnings, warnings...)
	}

	if opts.Format == FormatJSON || opts.Format == FormatBoth {
		encoded, err := CanonicalJSON(t)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize template %s: %w", t.Metadata.ID, err)
		}
		result.JSON = encoded
	}

	return result, nil
}

// CanonicalJSON serializes a template to its canonical string form:
// two-space indented, map keys sorted by encoding/json, byte-stable across
// calls and across a save/load round-trip.
func CanonicalJSON(t *models.Template) (string, error) {
	out, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// LoadTemplate parses the canonical JSON form back into a template.
func LoadTemplate(data []byte) (*models.Template, error) {
	var t models.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("loaded template is invalid: %w", err)
	}
	return &t, nil
}
