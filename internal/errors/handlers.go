// Interface-specific error handling. The CLI is the only interface the core
// ships with; the handler keeps the severity-based formatting contract so
// other surfaces can implement ErrorHandler the same way.
package errors

import (
	"fmt"
	"log"
)

// ErrorHandler provides interface-specific error handling
type ErrorHandler interface {
	HandleError(err error) error
	FormatError(err error) string
}

// CLIErrorHandler handles errors for CLI interface
type CLIErrorHandler struct {
	Verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler(verbose bool) *CLIErrorHandler {
	return &CLIErrorHandler{
		Verbose: verbose,
	}
}

// HandleError handles errors for CLI interface
func (h *CLIErrorHandler) HandleError(err error) error {
	appErr := GetAppError(err)

	if h.Verbose {
		log.Printf("[%s] %s: %s", appErr.Severity, appErr.Code, appErr.Error())
		if appErr.Cause != nil {
			log.Printf("Caused by: %v", appErr.Cause)
		}
	}

	return fmt.Errorf("%s", h.FormatError(appErr))
}

// FormatError formats an error for CLI display
func (h *CLIErrorHandler) FormatError(err error) string {
	appErr := GetAppError(err)

	switch appErr.Severity {
	case SeverityCritical:
		return fmt.Sprintf("CRITICAL: %s", appErr.Message)
	case SeverityError:
		return fmt.Sprintf("ERROR: %s", appErr.Message)
	case SeverityWarning:
		return fmt.Sprintf("WARNING: %s", appErr.Message)
	case SeverityInfo:
		return fmt.Sprintf("INFO: %s", appErr.Message)
	default:
		return appErr.Message
	}
}
