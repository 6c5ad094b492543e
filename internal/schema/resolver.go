// Package schema resolves declared data schemas into variable metadata for
// editor discovery. A schema is a plain nested map; keys prefixed with the
// reserved "__" marker carry schema metadata (type, required, description,
// ordering) and are never surfaced as variables.
package schema

import (
	"sort"
	"strings"

	"github.com/mailsmith/mailsmith/internal/models"
)

// Reserved schema keys.
const (
	keyType        = "__type"
	keyRequired    = "__required"
	keyDescription = "__description"
	keyItems       = "__items"
	keyOrder       = "__order"

	reservedPrefix = "__"
)

// Resolve walks the schema depth-first and returns the variable metadata in
// declaration order. A field declares itself either as a bare type name
// ("string", "number", ...) or as a nested map carrying reserved metadata
// keys alongside child fields. Declaration order is taken from the "__order"
// metadata key when present; otherwise keys are sorted so output stays
// deterministic.
func Resolve(s models.DataSchema) []models.VariableMetadata {
	return resolveLevel(map[string]interface{}(s), "")
}

func resolveLevel(level map[string]interface{}, prefix string) []models.VariableMetadata {
	var vars []models.VariableMetadata
	for _, key := range levelKeys(level) {
		vars = append(vars, resolveField(key, level[key], prefix))
	}
	return vars
}

func resolveField(key string, decl interface{}, prefix string) models.VariableMetadata {
	path := key
	if prefix != "" {
		path = prefix + "." + key
	}
	meta := models.VariableMetadata{Path: path, Type: "string"}

	switch d := decl.(type) {
	case string:
		meta.Type = d
	case map[string]interface{}:
		if t, ok := d[keyType].(string); ok {
			meta.Type = t
		} else {
			meta.Type = "object"
		}
		if req, ok := d[keyRequired].(bool); ok {
			meta.Required = req
		}
		if desc, ok := d[keyDescription].(string); ok {
			meta.Description = desc
		}
		switch meta.Type {
		case "array":
			meta.IsArray = true
			meta.Type = "object"
			switch items := d[keyItems].(type) {
			case string:
				meta.Type = items
			case map[string]interface{}:
				meta.Children = resolveLevel(childFields(items), path)
			}
		case "object":
			meta.Children = resolveLevel(childFields(d), path)
		}
	}
	return meta
}

// childFields strips reserved keys from a declaration map.
func childFields(decl map[string]interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(decl))
	for k, v := range decl {
		if strings.HasPrefix(k, reservedPrefix) {
			continue
		}
		fields[k] = v
	}
	if order, ok := decl[keyOrder]; ok {
		fields[keyOrder] = order
	}
	return fields
}

// levelKeys returns the field names of one schema level in declaration
// order: the "__order" list first (restricted to present fields), then any
// remaining fields sorted.
func levelKeys(level map[string]interface{}) []string {
	seen := make(map[string]bool)
	var keys []string
	if order, ok := level[keyOrder].([]interface{}); ok {
		for _, o := range order {
			if name, ok := o.(string); ok {
				if _, present := level[name]; present && !seen[name] {
					keys = append(keys, name)
					seen[name] = true
				}
			}
		}
	}
	var rest []string
	for k := range level {
		if strings.HasPrefix(k, reservedPrefix) || seen[k] {
			continue
		}
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Filter returns the variables matching term with a case-insensitive
// substring match against path, description and type, preserving the
// original relative order. A variable whose children match is kept with its
// children narrowed to the matching subset.
func Filter(vars []models.VariableMetadata, term string) []models.VariableMetadata {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return vars
	}
	var out []models.VariableMetadata
	for _, v := range vars {
		if matches(v, term) {
			out = append(out, v)
			continue
		}
		if kids := Filter(v.Children, term); len(kids) > 0 {
			narrowed := v
			narrowed.Children = kids
			out = append(out, narrowed)
		}
	}
	return out
}

func matches(v models.VariableMetadata, term string) bool {
	return strings.Contains(strings.ToLower(v.Path), term) ||
		strings.Contains(strings.ToLower(v.Description), term) ||
		strings.Contains(strings.ToLower(v.Type), term)
}
