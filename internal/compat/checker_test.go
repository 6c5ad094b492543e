package compat

import (
	"strings"
	"testing"

	"github.com/mailsmith/mailsmith/internal/models"
)

func cleanTemplate(t *testing.T) *models.Template {
	t.Helper()
	tmpl := models.NewTemplate("Clean")
	tmpl.Document.ID = "root"
	section := &models.DocumentNode{ID: "section-1", Type: models.NodeSection}
	text := &models.DocumentNode{ID: "text-1", Type: models.NodeText,
		Properties: map[string]interface{}{"text": "Hello", "fontFamily": "Arial, sans-serif"}}
	img := &models.DocumentNode{ID: "img-1", Type: models.NodeImage,
		Properties: map[string]interface{}{"src": "https://cdn.example.com/logo.png", "alt": "Logo", "width": 560}}
	if err := tmpl.InsertNode("root", 0, section); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := tmpl.InsertNode("section-1", 0, text); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := tmpl.InsertNode("section-1", 1, img); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return tmpl
}

func TestCheckTemplateClean(t *testing.T) {
	report := NewChecker().CheckTemplate(cleanTemplate(t))

	if report.OverallScore != 100 {
		t.Errorf("clean template should score 100, got %d (%v)", report.OverallScore, report.Issues)
	}
	if !report.SafeToExport {
		t.Error("clean template should be safe to export")
	}
	if report.TotalIssues != 0 {
		t.Errorf("expected no issues, got %v", report.Issues)
	}
	if report.Issues == nil {
		t.Error("issues must be an empty slice, never nil")
	}
}

func TestCheckTemplateFlexColumns(t *testing.T) {
	tmpl := cleanTemplate(t)
	cols := &models.DocumentNode{ID: "cols-1", Type: models.NodeColumns}
	if err := tmpl.InsertNode("root", 1, cols); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	report := NewChecker().CheckTemplate(tmpl)
	if report.OverallScore != 85 {
		t.Errorf("one high issue should score 85, got %d", report.OverallScore)
	}
	if !report.SafeToExport {
		t.Error("high severity alone does not block export")
	}
	found := false
	for _, issue := range report.Issues {
		if issue.ClientID == ClientOutlook && issue.Severity == models.IssueHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an outlook/high issue, got %v", report.Issues)
	}
}

func TestCheckTemplateCriticalImageFormat(t *testing.T) {
	tmpl := cleanTemplate(t)
	node, _, _ := tmpl.FindNode("img-1")
	node.Properties["src"] = "https://cdn.example.com/logo.svg?v=2"

	report := NewChecker().CheckTemplate(tmpl)
	if report.SafeToExport {
		t.Error("a critical issue must block export")
	}
	if report.OverallScore != 70 {
		t.Errorf("one critical issue should score 70, got %d", report.OverallScore)
	}
}

func TestCheckTemplateAccumulatesIssues(t *testing.T) {
	tmpl := cleanTemplate(t)
	node, _, _ := tmpl.FindNode("img-1")
	node.Properties["src"] = "http://cdn.example.com/banner.png" // low
	node.Properties["width"] = 900                               // medium
	text, _, _ := tmpl.FindNode("text-1")
	text.Properties["fontFamily"] = "Comic Neue"  // low
	text.Properties["borderRadius"] = "4px"       // medium

	report := NewChecker().CheckTemplate(tmpl)
	if report.TotalIssues != 4 {
		t.Fatalf("expected 4 issues, got %d: %v", report.TotalIssues, report.Issues)
	}
	// 100 - 3 - 7 - 3 - 7
	if report.OverallScore != 80 {
		t.Errorf("expected score 80, got %d", report.OverallScore)
	}
	if !report.SafeToExport {
		t.Error("no critical issues, export should be allowed")
	}
}

func TestCheckTemplateScoreFloorsAtZero(t *testing.T) {
	tmpl := cleanTemplate(t)
	for i := 0; i < 4; i++ {
		img := &models.DocumentNode{ID: "svg-" + string(rune('a'+i)), Type: models.NodeImage,
			Properties: map[string]interface{}{"src": "https://x/y.svg", "alt": "x"}}
		if err := tmpl.InsertNode("section-1", 0, img); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
	}

	report := NewChecker().CheckTemplate(tmpl)
	if report.OverallScore != 0 {
		t.Errorf("score must floor at 0, got %d", report.OverallScore)
	}
	if report.SafeToExport {
		t.Error("critical issues must block export")
	}
}

func TestCheckHTML(t *testing.T) {
	c := NewChecker()

	clean := `<html><body><table role="presentation"><tr><td><img src="https://x/a.png" alt="a"></td></tr></table></body></html>`
	report, err := c.CheckHTML(clean)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.OverallScore != 100 || !report.SafeToExport {
		t.Errorf("clean HTML should pass, got %d (%v)", report.OverallScore, report.Issues)
	}

	dirty := `<html><head><style>@media (max-width: 480px) { p { color: red; } }</style></head>
<body style="display: flex"><script>alert(1)</script><img src="https://x/a.png"></body></html>`
	report, err = c.CheckHTML(dirty)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.SafeToExport {
		t.Error("script content must block export")
	}
	var ids []string
	for _, issue := range report.Issues {
		ids = append(ids, issue.Message)
	}
	joined := strings.Join(ids, "\n")
	for _, want := range []string{"<script>", "display: flex", "media queries", "alt text"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected an issue mentioning %q, got:\n%s", want, joined)
		}
	}
}

func TestAddCustomRule(t *testing.T) {
	c := NewChecker()
	c.AddTemplateRule(TemplateRule{
		ID:       "no-empty-name",
		ClientID: ClientGeneral,
		Severity: models.IssueLow,
		Check: func(t *models.Template) []string {
			if t.Metadata.Name == "" {
				return []string{"template has no name"}
			}
			return nil
		},
	})

	tmpl := cleanTemplate(t)
	tmpl.Metadata.Name = ""
	report := c.CheckTemplate(tmpl)
	if report.OverallScore != 97 {
		t.Errorf("custom rule not applied, score %d (%v)", report.OverallScore, report.Issues)
	}
}
