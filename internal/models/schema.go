package models

// VariableMetadata describes one resolvable variable derived from a data
// schema. It is read-only UI discovery data, recomputed whenever the schema
// changes.
type VariableMetadata struct {
	Path        string             `json:"path"`
	Type        string             `json:"type"` // element type when IsArray is set
	IsArray     bool               `json:"isArray,omitempty"`
	Required    bool               `json:"required"`
	Description string             `json:"description,omitempty"`
	Children    []VariableMetadata `json:"children,omitempty"`
}

// DataSchema is the declared shape of the runtime data a template may
// reference. Keys prefixed with "__" are schema metadata, not variables.
type DataSchema map[string]interface{}
