package schema

import (
	"testing"

	"github.com/mailsmith/mailsmith/internal/models"
)

func testSchema() models.DataSchema {
	return models.DataSchema{
		"__order": []interface{}{"user", "order", "promoCode"},
		"user": map[string]interface{}{
			"__type":        "object",
			"__required":    true,
			"__description": "The recipient",
			"__order":       []interface{}{"name", "email", "address"},
			"name":          "string",
			"email":         "string",
			"address": map[string]interface{}{
				"__type": "object",
				"city":   "string",
				"zip":    "string",
			},
		},
		"order": map[string]interface{}{
			"__type": "object",
			"total":  "number",
			"items": map[string]interface{}{
				"__type": "array",
				"__items": map[string]interface{}{
					"name":  "string",
					"price": "number",
				},
			},
		},
		"promoCode": "string",
	}
}

func TestResolveOrderAndPaths(t *testing.T) {
	vars := Resolve(testSchema())

	if len(vars) != 3 {
		t.Fatalf("expected 3 top-level variables, got %d", len(vars))
	}
	wantOrder := []string{"user", "order", "promoCode"}
	for i, w := range wantOrder {
		if vars[i].Path != w {
			t.Errorf("position %d: got %s, want %s", i, vars[i].Path, w)
		}
	}

	user := vars[0]
	if user.Type != "object" || !user.Required || user.Description != "The recipient" {
		t.Errorf("unexpected user metadata: %+v", user)
	}
	if len(user.Children) != 3 {
		t.Fatalf("expected 3 user children, got %d", len(user.Children))
	}
	if user.Children[0].Path != "user.name" || user.Children[2].Path != "user.address" {
		t.Errorf("unexpected child paths: %s, %s", user.Children[0].Path, user.Children[2].Path)
	}

	address := user.Children[2]
	if len(address.Children) != 2 || address.Children[0].Path != "user.address.city" {
		t.Errorf("nested paths not dotted: %+v", address.Children)
	}
}

func TestResolveReservedKeysSkipped(t *testing.T) {
	vars := Resolve(testSchema())
	var all []string
	var collect func([]models.VariableMetadata)
	collect = func(vs []models.VariableMetadata) {
		for _, v := range vs {
			all = append(all, v.Path)
			collect(v.Children)
		}
	}
	collect(vars)
	for _, path := range all {
		if len(path) >= 2 && path[:2] == "__" {
			t.Errorf("reserved key surfaced as variable: %s", path)
		}
	}
}

func TestResolveArray(t *testing.T) {
	vars := Resolve(testSchema())
	order := vars[1]

	var items *models.VariableMetadata
	for i := range order.Children {
		if order.Children[i].Path == "order.items" {
			items = &order.Children[i]
		}
	}
	if items == nil {
		t.Fatal("order.items not resolved")
	}
	if !items.IsArray {
		t.Error("order.items should be tagged as array")
	}
	if len(items.Children) != 2 {
		t.Fatalf("expected 2 element fields, got %d", len(items.Children))
	}
	if items.Children[0].Path != "order.items.name" {
		t.Errorf("element paths should extend the array path, got %s", items.Children[0].Path)
	}
}

func TestResolveScalarArray(t *testing.T) {
	vars := Resolve(models.DataSchema{
		"tags": map[string]interface{}{
			"__type":  "array",
			"__items": "string",
		},
	})
	if len(vars) != 1 {
		t.Fatalf("expected 1 variable, got %d", len(vars))
	}
	if !vars[0].IsArray || vars[0].Type != "string" {
		t.Errorf("scalar array should carry the element type: %+v", vars[0])
	}
}

func TestResolveUnorderedKeysSorted(t *testing.T) {
	vars := Resolve(models.DataSchema{
		"zebra": "string",
		"alpha": "string",
		"mid":   "string",
	})
	want := []string{"alpha", "mid", "zebra"}
	for i, w := range want {
		if vars[i].Path != w {
			t.Errorf("position %d: got %s, want %s", i, vars[i].Path, w)
		}
	}
}

func TestFilter(t *testing.T) {
	vars := Resolve(testSchema())

	byPath := Filter(vars, "email")
	if len(byPath) != 1 || byPath[0].Path != "user" {
		t.Fatalf("expected user kept for matching child, got %+v", byPath)
	}
	if len(byPath[0].Children) != 1 || byPath[0].Children[0].Path != "user.email" {
		t.Errorf("children should be narrowed to matches: %+v", byPath[0].Children)
	}

	byDescription := Filter(vars, "recipient")
	if len(byDescription) != 1 || byDescription[0].Path != "user" {
		t.Errorf("description match failed: %+v", byDescription)
	}
	// A directly matching variable keeps all of its children.
	if len(byDescription[0].Children) != 3 {
		t.Errorf("direct match should keep children, got %d", len(byDescription[0].Children))
	}

	byType := Filter(vars, "number")
	found := false
	for _, v := range byType {
		if v.Path == "order" {
			found = true
		}
	}
	if !found {
		t.Errorf("type match failed: %+v", byType)
	}

	if out := Filter(vars, ""); len(out) != len(vars) {
		t.Error("empty term should return everything")
	}
	if out := Filter(vars, "zzz-nothing"); len(out) != 0 {
		t.Errorf("no matches expected, got %+v", out)
	}
}
