// Package validation provides centralized input validation for service
// operations. Parameters from any surface (CLI flags, future HTTP bodies)
// are validated against a named schema before they reach business logic,
// with type conversion and field-level error context.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mailsmith/mailsmith/internal/errors"
)

// FieldValidator provides validation rules for individual fields
type FieldValidator struct {
	Name      string
	Required  bool
	Type      string // "string", "int", "bool"
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Options   []string
	Custom    func(interface{}) error
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool                   `json:"valid"`
	Errors []ValidationError      `json:"errors,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// GetValidatedData returns the type-converted parameter map.
func (r *ValidationResult) GetValidatedData() map[string]interface{} {
	return r.Data
}

// ToAppError converts a failed result into a single AppError carrying
// every field message.
func (r *ValidationResult) ToAppError() *errors.AppError {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return errors.ValidationError("invalid parameters").WithDetails(strings.Join(msgs, "; "))
}

// Validator validates parameter maps against named schemas
type Validator struct {
	schemas map[string][]FieldValidator
}

// NewValidator creates a validator with the built-in operation schemas.
func NewValidator() *Validator {
	v := &Validator{schemas: make(map[string][]FieldValidator)}
	v.registerSchemas()
	return v
}

// RegisterSchema adds or replaces a named schema.
func (v *Validator) RegisterSchema(name string, fields []FieldValidator) {
	v.schemas[name] = fields
}

// Validate checks params against the named schema. An unknown schema name
// passes everything through unchanged.
func (v *Validator) Validate(schemaName string, params map[string]interface{}) *ValidationResult {
	fields, ok := v.schemas[schemaName]
	if !ok {
		return &ValidationResult{Valid: true, Data: params}
	}
	result := &ValidationResult{Valid: true, Data: make(map[string]interface{})}
	for _, field := range fields {
		raw, present := params[field.Name]
		if !present || raw == nil || raw == "" {
			if field.Required {
				result.addError(field.Name, "MISSING_FIELD", "is required", nil)
			}
			continue
		}
		value, err := convert(raw, field.Type)
		if err != nil {
			result.addError(field.Name, "INVALID_FORMAT", err.Error(), raw)
			continue
		}
		if err := checkConstraints(field, value); err != nil {
			result.addError(field.Name, "VALIDATION_ERROR", err.Error(), raw)
			continue
		}
		result.Data[field.Name] = value
	}
	return result
}

func (r *ValidationResult) addError(field, code, message string, value interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Code: code, Message: message, Value: value})
}

func convert(raw interface{}, fieldType string) (interface{}, error) {
	switch fieldType {
	case "", "string":
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", raw), nil
	case "int":
		switch n := raw.(type) {
		case int:
			return n, nil
		case float64:
			return int(n), nil
		case string:
			parsed, err := strconv.Atoi(n)
			if err != nil {
				return nil, fmt.Errorf("must be an integer")
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("must be an integer")
	case "bool":
		switch b := raw.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("must be a boolean")
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("must be a boolean")
	default:
		return raw, nil
	}
}

func checkConstraints(field FieldValidator, value interface{}) error {
	if s, ok := value.(string); ok {
		if field.MinLength > 0 && len(s) < field.MinLength {
			return fmt.Errorf("must be at least %d characters", field.MinLength)
		}
		if field.MaxLength > 0 && len(s) > field.MaxLength {
			return fmt.Errorf("must be at most %d characters", field.MaxLength)
		}
		if field.Pattern != nil && !field.Pattern.MatchString(s) {
			return fmt.Errorf("has an invalid format")
		}
		if len(field.Options) > 0 {
			valid := false
			for _, opt := range field.Options {
				if s == opt {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("must be one of: %s", strings.Join(field.Options, ", "))
			}
		}
	}
	if field.Custom != nil {
		return field.Custom(value)
	}
	return nil
}

// registerSchemas installs the schemas for the built-in service operations.
func (v *Validator) registerSchemas() {
	v.RegisterSchema("create_template", []FieldValidator{
		{Name: "name", Required: true, Type: "string", MinLength: 1, MaxLength: 200},
		{Name: "category", Type: "string", MaxLength: 100},
		{Name: "description", Type: "string", MaxLength: 1000},
	})
	v.RegisterSchema("get_template", []FieldValidator{
		{Name: "id", Required: true, Type: "string", MinLength: 1},
	})
	v.RegisterSchema("delete_template", []FieldValidator{
		{Name: "id", Required: true, Type: "string", MinLength: 1},
	})
	v.RegisterSchema("search_templates", []FieldValidator{
		{Name: "query", Required: true, Type: "string", MinLength: 1},
	})
	v.RegisterSchema("export_template", []FieldValidator{
		{Name: "id", Required: true, Type: "string", MinLength: 1},
		{Name: "format", Type: "string", Options: []string{"html", "json", "both"}},
		{Name: "emailSafe", Type: "bool"},
		{Name: "inlineStyles", Type: "bool"},
		{Name: "prettyPrint", Type: "bool"},
	})
	v.RegisterSchema("validate_template", []FieldValidator{
		{Name: "id", Required: true, Type: "string", MinLength: 1},
	})
}
