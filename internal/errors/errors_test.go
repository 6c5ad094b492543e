package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	err := ValidationError("invalid parameters").WithDetails("name: is required")
	got := err.Error()
	if !strings.Contains(got, "VALIDATION_ERROR") || !strings.Contains(got, "name: is required") {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestCategorization(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category ErrorCategory
		severity ErrorSeverity
	}{
		{ErrCodeValidation, CategoryValidation, SeverityWarning},
		{ErrCodeNotFound, CategoryService, SeverityInfo},
		{ErrCodeEmptyHistory, CategoryHistory, SeverityInfo},
		{ErrCodeCommandFailed, CategoryCommand, SeverityError},
		{ErrCodeExportFailure, CategoryExport, SeverityError},
		{ErrCodeFileCorrupted, CategoryStorage, SeverityError},
		{ErrCodeInternalError, CategoryService, SeverityCritical},
	}
	for _, tt := range tests {
		err := NewAppError(tt.code, "x")
		if err.Category != tt.category || err.Severity != tt.severity {
			t.Errorf("%s: got %s/%s, want %s/%s", tt.code, err.Category, err.Severity, tt.category, tt.severity)
		}
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrCodeStorageFailure, "write failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause must be reachable through errors.Is")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIsCode(t *testing.T) {
	err := NotFoundError("template abc")
	if !IsCode(err, ErrCodeNotFound) {
		t.Error("IsCode should match the carried code")
	}
	if IsCode(err, ErrCodeValidation) {
		t.Error("IsCode must not match other codes")
	}
	if IsCode(fmt.Errorf("plain"), ErrCodeNotFound) {
		t.Error("plain errors carry no code")
	}
	if IsCode(nil, ErrCodeNotFound) {
		t.Error("nil carries no code")
	}
}

func TestGetAppError(t *testing.T) {
	app := EmptyHistoryError()
	if GetAppError(app) != app {
		t.Error("AppErrors should pass through unchanged")
	}

	converted := GetAppError(fmt.Errorf("boom"))
	if converted.Code != ErrCodeInternalError {
		t.Errorf("plain errors convert to INTERNAL_ERROR, got %s", converted.Code)
	}
}

func TestCommandFailedErrorContext(t *testing.T) {
	err := CommandFailedError("cmd-1", fmt.Errorf("parent not found"))
	if err.Code != ErrCodeCommandFailed {
		t.Errorf("unexpected code %s", err.Code)
	}
	if err.Context["commandId"] != "cmd-1" {
		t.Errorf("command id missing from context: %v", err.Context)
	}
}

func TestCLIErrorHandlerFormatting(t *testing.T) {
	h := NewCLIErrorHandler(false)

	tests := []struct {
		err  error
		want string
	}{
		{InternalError("state corrupted"), "CRITICAL: state corrupted"},
		{NewAppError(ErrCodeExportFailure, "bad node"), "ERROR: bad node"},
		{ValidationError("bad input"), "WARNING: bad input"},
		{NotFoundError("template"), "INFO: template not found"},
	}
	for _, tt := range tests {
		if got := h.FormatError(tt.err); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
