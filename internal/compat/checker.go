// Package compat scores templates and exported HTML against known email
// client limitations. Rules are independent and order-insensitive; each one
// inspects the document or HTML for a single limitation and contributes an
// additive severity-weighted penalty. Adding a rule never changes how
// existing rules score.
package compat

import (
	"strings"

	"golang.org/x/net/html"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/models"
)

// severityWeights are the per-issue penalties subtracted from 100.
var severityWeights = map[models.IssueSeverity]int{
	models.IssueLow:      3,
	models.IssueMedium:   7,
	models.IssueHigh:     15,
	models.IssueCritical: 30,
}

// TemplateRule inspects the document model for one client limitation.
type TemplateRule struct {
	ID       string
	ClientID string
	Severity models.IssueSeverity
	Check    func(t *models.Template) []string
}

// HTMLRule inspects exported HTML for one client limitation.
type HTMLRule struct {
	ID       string
	ClientID string
	Severity models.IssueSeverity
	Check    func(doc *html.Node, raw string) []string
}

// Checker runs the rule battery. The default battery is installed by
// NewChecker; AddTemplateRule/AddHTMLRule extend it additively.
type Checker struct {
	templateRules []TemplateRule
	htmlRules     []HTMLRule
}

// NewChecker creates a checker with the built-in rule battery.
func NewChecker() *Checker {
	return &Checker{
		templateRules: defaultTemplateRules(),
		htmlRules:     defaultHTMLRules(),
	}
}

// AddTemplateRule registers an extra document-model rule.
func (c *Checker) AddTemplateRule(r TemplateRule) {
	c.templateRules = append(c.templateRules, r)
}

// AddHTMLRule registers an extra HTML rule.
func (c *Checker) AddHTMLRule(r HTMLRule) {
	c.htmlRules = append(c.htmlRules, r)
}

// CheckTemplate scores the document model.
func (c *Checker) CheckTemplate(t *models.Template) *models.CompatibilityReport {
	var issues []models.CompatibilityIssue
	for _, rule := range c.templateRules {
		for _, msg := range rule.Check(t) {
			issues = append(issues, models.CompatibilityIssue{
				ClientID: rule.ClientID,
				Severity: rule.Severity,
				Message:  msg,
			})
		}
	}
	return buildReport(issues)
}

// CheckHTML scores exported HTML.
func (c *Checker) CheckHTML(raw string) (*models.CompatibilityReport, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "failed to parse HTML for compatibility check")
	}
	var issues []models.CompatibilityIssue
	for _, rule := range c.htmlRules {
		for _, msg := range rule.Check(doc, raw) {
			issues = append(issues, models.CompatibilityIssue{
				ClientID: rule.ClientID,
				Severity: rule.Severity,
				Message:  msg,
			})
		}
	}
	return buildReport(issues), nil
}

func buildReport(issues []models.CompatibilityIssue) *models.CompatibilityReport {
	score := 100
	safe := true
	for _, issue := range issues {
		score -= severityWeights[issue.Severity]
		if issue.Severity == models.IssueCritical {
			safe = false
		}
	}
	if score < 0 {
		score = 0
	}
	if issues == nil {
		issues = []models.CompatibilityIssue{}
	}
	return &models.CompatibilityReport{
		OverallScore: score,
		SafeToExport: safe,
		TotalIssues:  len(issues),
		Issues:       issues,
	}
}
