// Package errors provides unified error handling across the mailsmith system.
//
// SYSTEM ARCHITECTURE ROLE:
// This module serves as the foundation for error handling across all layers
// (document model, command engine, exporters, storage, CLI). It standardizes
// error representation, categorization, and handling patterns throughout the
// application.
//
// KEY RESPONSIBILITIES:
// - Define standardized error codes and categories for consistent error identification
// - Provide structured error types (AppError) with severity levels and context
// - Distinguish hard failures (operation aborted, nothing changed) from soft
//   warnings (operation completed, review suggested)
//
// INTEGRATION POINTS:
// - internal/commands: history boundary errors (EmptyHistory, NoRedoAvailable)
//   and command execution failures carry the offending command id
// - internal/renderer: export failures name the offending node id and type
// - internal/storage: storage failures wrap the underlying filesystem error
// - internal/validation: ValidationResult.ToAppError() converts validation failures
// - internal/cli: CLIErrorHandler formats AppErrors for terminal display
//
// USAGE PATTERNS:
// - Create errors: Use constructor functions like ValidationError(), NotFoundError()
// - Wrap errors: Use Wrap() to add context to existing errors
// - Check types: Use IsAppError() and GetAppError() for type-safe error handling
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Resource errors
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// History boundary errors
	ErrCodeEmptyHistory    ErrorCode = "EMPTY_HISTORY"
	ErrCodeNoRedoAvailable ErrorCode = "NO_REDO_AVAILABLE"

	// Command errors
	ErrCodeCommandFailed  ErrorCode = "COMMAND_FAILED"
	ErrCodeInvalidCommand ErrorCode = "INVALID_COMMAND"

	// Export errors
	ErrCodeExportFailure ErrorCode = "EXPORT_ERROR"

	// Storage errors
	ErrCodeStorageFailure ErrorCode = "STORAGE_FAILURE"
	ErrCodeFileCorrupted  ErrorCode = "FILE_CORRUPTED"

	// Service errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryHistory    ErrorCategory = "history"
	CategoryCommand    ErrorCategory = "command"
	CategoryExport     ErrorCategory = "export"
	CategoryStorage    ErrorCategory = "storage"
	CategoryService    ErrorCategory = "service"
	CategorySystem     ErrorCategory = "system"
)

// AppError represents a standardized application error
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Severity  ErrorSeverity          `json:"severity"`
	Category  ErrorCategory          `json:"category"`
	Cause     error                  `json:"-"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with application error context
func Wrap(err error, code ErrorCode, message string) *AppError {
	category, severity := categorizeError(code)
	return &AppError{
		Code:      code,
		Message:   message,
		Severity:  severity,
		Category:  category,
		Cause:     err,
		Timestamp: time.Now(),
	}
}

// categorizeError determines the category and severity based on error code
func categorizeError(code ErrorCode) (ErrorCategory, ErrorSeverity) {
	switch code {
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField, ErrCodeInvalidFormat:
		return CategoryValidation, SeverityWarning
	case ErrCodeNotFound:
		return CategoryService, SeverityInfo
	case ErrCodeAlreadyExists:
		return CategoryService, SeverityWarning
	case ErrCodeEmptyHistory, ErrCodeNoRedoAvailable:
		return CategoryHistory, SeverityInfo
	case ErrCodeCommandFailed, ErrCodeInvalidCommand:
		return CategoryCommand, SeverityError
	case ErrCodeExportFailure:
		return CategoryExport, SeverityError
	case ErrCodeStorageFailure, ErrCodeFileCorrupted:
		return CategoryStorage, SeverityError
	case ErrCodeInternalError:
		return CategoryService, SeverityCritical
	default:
		return CategorySystem, SeverityError
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError extracts an AppError from an error, or converts it to one
func GetAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, ErrCodeInternalError, "Internal error occurred")
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// Common error constructors for frequently used errors

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyExistsError(resource string) *AppError {
	return NewAppError(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func EmptyHistoryError() *AppError {
	return NewAppError(ErrCodeEmptyHistory, "nothing to undo")
}

func NoRedoAvailableError() *AppError {
	return NewAppError(ErrCodeNoRedoAvailable, "nothing to redo")
}

func CommandFailedError(commandID string, err error) *AppError {
	return Wrap(err, ErrCodeCommandFailed, fmt.Sprintf("command %s failed", commandID)).
		WithContext("commandId", commandID)
}

func ExportError(nodeID, nodeType, reason string) *AppError {
	return NewAppError(ErrCodeExportFailure,
		fmt.Sprintf("cannot export node %s of type %q: %s", nodeID, nodeType, reason)).
		WithContext("nodeId", nodeID).
		WithContext("nodeType", nodeType)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternalError, message)
}

func StorageError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStorageFailure, fmt.Sprintf("Storage operation failed: %s", operation))
}
