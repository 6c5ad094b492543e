package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mailsmith/mailsmith/internal/models"
)

// CLI output styles. Headless mode prints plain structured text; these
// styles only color the severity-bearing fragments so output stays
// greppable.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleMuted   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleHeading = lipgloss.NewStyle().Bold(true)
)

// severityStyle picks a style for a compatibility issue severity.
func severityStyle(sev models.IssueSeverity) lipgloss.Style {
	switch sev {
	case models.IssueCritical, models.IssueHigh:
		return styleError
	case models.IssueMedium:
		return styleWarning
	default:
		return styleMuted
	}
}
