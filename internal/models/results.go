package models

// ExportResult is the product of a single export call. It is never
// persisted; the JSON form doubles as the at-rest template representation.
type ExportResult struct {
	HTML     string   `json:"html,omitempty"`
	JSON     string   `json:"json,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// IssueSeverity grades a compatibility finding.
type IssueSeverity string

const (
	IssueLow      IssueSeverity = "low"
	IssueMedium   IssueSeverity = "medium"
	IssueHigh     IssueSeverity = "high"
	IssueCritical IssueSeverity = "critical"
)

// CompatibilityIssue is one rule violation against one mail client.
type CompatibilityIssue struct {
	ClientID string        `json:"clientId"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// CompatibilityReport aggregates the rule battery: a 0-100 score, whether
// the template is safe to export (no critical issues) and every finding.
type CompatibilityReport struct {
	OverallScore int                  `json:"overallScore"`
	SafeToExport bool                 `json:"safeToExport"`
	TotalIssues  int                  `json:"totalIssues"`
	Issues       []CompatibilityIssue `json:"issues"`
}
