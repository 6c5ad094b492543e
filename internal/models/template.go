package models

import (
	"time"

	"github.com/google/uuid"
)

// Template represents an email template: metadata, canvas settings, an
// optional sample data context for previewing variable injection, and the
// document tree itself.
type Template struct {
	Metadata   TemplateMetadata       `json:"metadata"`
	Settings   TemplateSettings       `json:"settings"`
	DataSchema DataSchema             `json:"dataSchema,omitempty"`
	SampleData map[string]interface{} `json:"sampleData,omitempty"`
	Document   *DocumentNode          `json:"document"`
}

// TemplateMetadata carries identity and descriptive fields. ID is immutable
// once assigned.
type TemplateMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TemplateSettings holds canvas-level configuration.
type TemplateSettings struct {
	Target           string           `json:"target,omitempty"` // e.g. "email", "web"
	Locale           string           `json:"locale,omitempty"`
	CanvasDimensions CanvasDimensions `json:"canvasDimensions"`
}

// CanvasDimensions is the design-time canvas size in pixels.
type CanvasDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewTemplate creates a template with a generated id and an empty container
// root, sized to the common 600px email canvas.
func NewTemplate(name string) *Template {
	now := time.Now().UTC().Truncate(time.Second)
	return &Template{
		Metadata: TemplateMetadata{
			ID:        uuid.NewString(),
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Settings: TemplateSettings{
			Target:           "email",
			Locale:           "en",
			CanvasDimensions: CanvasDimensions{Width: 600, Height: 800},
		},
		Document: &DocumentNode{
			ID:   uuid.NewString(),
			Type: NodeContainer,
		},
	}
}

// Clone returns a deep copy of the template. Commands capture clones of the
// state they are about to destroy so undo can restore it exactly.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	clone := *t
	clone.DataSchema = DataSchema(cloneValueMap(t.DataSchema))
	clone.SampleData = cloneValueMap(t.SampleData)
	clone.Document = t.Document.Clone()
	return &clone
}

// FilterValue returns the value used when fuzzy-matching templates in lists.
func (t *Template) FilterValue() string {
	return t.Metadata.Name + " " + t.Metadata.Description + " " + t.Metadata.Category
}

func cloneValueMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return cloneValueMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
