package renderer

import (
	"strings"
	"testing"

	"github.com/mailsmith/mailsmith/internal/models"
)

func TestHandlerTableCoversAllNodeTypes(t *testing.T) {
	types := []models.NodeType{
		models.NodeContainer, models.NodeSection, models.NodeColumns,
		models.NodeColumn, models.NodeHeading, models.NodeText,
		models.NodeImage, models.NodeButton, models.NodeDivider,
		models.NodeSpacer,
	}
	if len(handlers) != len(types) {
		t.Fatalf("dispatch table has %d entries, want %d", len(handlers), len(types))
	}
	for _, nt := range types {
		if handlers[nt] == nil {
			t.Errorf("no render handler for node type %q", nt)
		}
	}
}

func buildExportTemplate(t *testing.T) *models.Template {
	t.Helper()
	tmpl := models.NewTemplate("Order confirmation")
	tmpl.Document.ID = "root"
	tmpl.SampleData = map[string]interface{}{
		"user":  map[string]interface{}{"name": "Ada"},
		"total": 42.5,
	}

	section := &models.DocumentNode{ID: "section-1", Type: models.NodeSection,
		Properties: map[string]interface{}{"backgroundColor": "#f4f4f4", "padding": "16px"}}
	heading := &models.DocumentNode{ID: "heading-1", Type: models.NodeHeading,
		Properties: map[string]interface{}{"text": "Hi {{user.name}}", "level": 1}}
	text := &models.DocumentNode{ID: "text-1", Type: models.NodeText,
		Properties: map[string]interface{}{"text": "Total: {{formatCurrency(total, 'USD')}}", "color": "#333333"}}
	button := &models.DocumentNode{ID: "button-1", Type: models.NodeButton,
		Properties: map[string]interface{}{"label": "View order", "href": "https://example.com/o/1"}}

	if err := tmpl.InsertNode("root", 0, section); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	for i, n := range []*models.DocumentNode{heading, text, button} {
		if err := tmpl.InsertNode("section-1", i, n); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}
	return tmpl
}

func TestExportHTMLInlineStyles(t *testing.T) {
	tmpl := buildExportTemplate(t)
	e := NewExporter(nil)

	result, err := e.Export(tmpl, ExportOptions{Format: FormatHTML, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	html := result.HTML
	for _, want := range []string{
		"<!DOCTYPE html>",
		"<h1",
		"Hi Ada",
		"Total: $42.50",
		`href="https://example.com/o/1"`,
		"View order",
		"background-color: #f4f4f4",
		"color: #333333",
		"width: 600px",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "<style>") {
		t.Error("inline export should not emit a <style> block")
	}
}

func TestExportHTMLStyleBlock(t *testing.T) {
	tmpl := buildExportTemplate(t)
	e := NewExporter(nil)

	result, err := e.Export(tmpl, ExportOptions{Format: FormatHTML})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	html := result.HTML
	if !strings.Contains(html, "<style>") {
		t.Fatal("expected a <style> block when styles are not inlined")
	}
	if !strings.Contains(html, "#section-1 {") {
		t.Errorf("expected an id rule for section-1:\n%s", html)
	}
	if !strings.Contains(html, `id="section-1"`) {
		t.Error("styled elements should carry their node id")
	}
}

func TestExportDataOverridesSampleData(t *testing.T) {
	tmpl := buildExportTemplate(t)
	e := NewExporter(nil)

	result, err := e.Export(tmpl, ExportOptions{
		Format:       FormatHTML,
		InlineStyles: true,
		Data:         map[string]interface{}{"user": map[string]interface{}{"name": "Grace"}, "total": 10},
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(result.HTML, "Hi Grace") {
		t.Errorf("explicit data should override sample data:\n%s", result.HTML)
	}
}

func TestExportUnknownHelperWarns(t *testing.T) {
	tmpl := buildExportTemplate(t)
	node, _, _ := tmpl.FindNode("text-1")
	node.Properties["text"] = "{{mystery(total)}}"
	e := NewExporter(nil)

	result, err := e.Export(tmpl, ExportOptions{Format: FormatHTML})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "unknown helper") {
		t.Errorf("expected unknown-helper warning, got %v", result.Warnings)
	}
}

func TestExportUnknownNodeTypeFails(t *testing.T) {
	tmpl := buildExportTemplate(t)
	node, _, _ := tmpl.FindNode("text-1")
	node.Type = "carousel"
	e := NewExporter(nil)

	if _, err := e.Export(tmpl, ExportOptions{Format: FormatHTML}); err == nil {
		t.Fatal("expected export error for unknown node type")
	}
}

func TestExportJSONRoundTripIsByteStable(t *testing.T) {
	tmpl := buildExportTemplate(t)
	e := NewExporter(nil)

	first, err := e.Export(tmpl, ExportOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	loaded, err := LoadTemplate([]byte(first.JSON))
	if err != nil {
		t.Fatalf("failed to load exported JSON: %v", err)
	}

	second, err := e.Export(loaded, ExportOptions{Format: FormatJSON})
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}
	if first.JSON != second.JSON {
		t.Error("canonical JSON must be byte-stable across a save/load round-trip")
	}
}

func TestExportBoth(t *testing.T) {
	tmpl := buildExportTemplate(t)
	e := NewExporter(nil)

	result, err := e.Export(tmpl, ExportOptions{Format: FormatBoth, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if result.HTML == "" || result.JSON == "" {
		t.Error("both format should produce HTML and JSON")
	}
}

func TestExportNodeIDAttributes(t *testing.T) {
	tmpl := buildExportTemplate(t)

	plain := NewExporter(nil)
	result, err := plain.Export(tmpl, ExportOptions{Format: FormatHTML, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(result.HTML, "data-node-id") {
		t.Error("node id attributes are off by default")
	}

	tagged := NewExporter(nil, WithNodeIDs(true))
	result, err = tagged.Export(tmpl, ExportOptions{Format: FormatHTML, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(result.HTML, `data-node-id="section-1"`) {
		t.Errorf("expected data-node-id attributes:\n%s", result.HTML)
	}
}

func TestExportSpacerAndDivider(t *testing.T) {
	tmpl := models.NewTemplate("Spacing")
	tmpl.Document.ID = "root"
	spacer := &models.DocumentNode{ID: "spacer-1", Type: models.NodeSpacer,
		Properties: map[string]interface{}{"height": 40}}
	divider := &models.DocumentNode{ID: "divider-1", Type: models.NodeDivider}
	if err := tmpl.InsertNode("root", 0, spacer); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := tmpl.InsertNode("root", 1, divider); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	e := NewExporter(nil)
	result, err := e.Export(tmpl, ExportOptions{Format: FormatHTML, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(result.HTML, "height: 40px") {
		t.Errorf("spacer height not rendered:\n%s", result.HTML)
	}
	if !strings.Contains(result.HTML, "<hr") {
		t.Errorf("divider not rendered:\n%s", result.HTML)
	}
}

func TestExportEscapesContent(t *testing.T) {
	tmpl := models.NewTemplate("Escaping")
	tmpl.Document.ID = "root"
	text := &models.DocumentNode{ID: "text-1", Type: models.NodeText,
		Properties: map[string]interface{}{"text": "<script>alert(1)</script>"}}
	if err := tmpl.InsertNode("root", 0, text); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	e := NewExporter(nil)
	result, err := e.Export(tmpl, ExportOptions{Format: FormatHTML, InlineStyles: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if strings.Contains(result.HTML, "<script>") {
		t.Error("text content must be HTML-escaped")
	}
	if !strings.Contains(result.HTML, "&lt;script&gt;") {
		t.Errorf("expected escaped content:\n%s", result.HTML)
	}
}
