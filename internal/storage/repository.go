package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/models"
	"github.com/mailsmith/mailsmith/internal/renderer"
)

// templatePrefix namespaces template keys within the adapter.
const templatePrefix = "templates/"

// TemplateRepository persists templates through an Adapter using the
// canonical JSON export as the at-rest form, so a save/load round-trip
// reproduces an equal document.
type TemplateRepository struct {
	adapter Adapter
}

// NewTemplateRepository wraps an adapter.
func NewTemplateRepository(adapter Adapter) *TemplateRepository {
	return &TemplateRepository{adapter: adapter}
}

func templateKey(id string) string {
	return templatePrefix + id + ".json"
}

// Save writes the template's canonical JSON form.
func (r *TemplateRepository) Save(ctx context.Context, t *models.Template) error {
	if t == nil || t.Metadata.ID == "" {
		return apperrors.ValidationError("cannot save a template without an id")
	}
	encoded, err := renderer.CanonicalJSON(t)
	if err != nil {
		return apperrors.StorageError("serialize template", err)
	}
	if err := r.adapter.Set(ctx, templateKey(t.Metadata.ID), encoded); err != nil {
		return apperrors.StorageError("save template", err)
	}
	return nil
}

// Load reads a template back by id.
func (r *TemplateRepository) Load(ctx context.Context, id string) (*models.Template, error) {
	value, found, err := r.adapter.Get(ctx, templateKey(id))
	if err != nil {
		return nil, apperrors.StorageError("load template", err)
	}
	if !found {
		return nil, apperrors.NotFoundError(fmt.Sprintf("template %s", id))
	}
	t, err := renderer.LoadTemplate([]byte(value))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeFileCorrupted,
			fmt.Sprintf("stored template %s is corrupted", id))
	}
	return t, nil
}

// Delete removes a template by id, failing if it does not exist.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, found, err := r.adapter.Get(ctx, templateKey(id))
	if err != nil {
		return apperrors.StorageError("delete template", err)
	}
	if !found {
		return apperrors.NotFoundError(fmt.Sprintf("template %s", id))
	}
	if err := r.adapter.Delete(ctx, templateKey(id)); err != nil {
		return apperrors.StorageError("delete template", err)
	}
	return nil
}

// List loads every stored template. A single unreadable entry is skipped
// with a warning rather than failing the whole listing.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.Template, error) {
	keys, err := r.adapter.List(ctx)
	if err != nil {
		return nil, apperrors.StorageError("list templates", err)
	}
	var templates []*models.Template
	for _, key := range keys {
		if !strings.HasPrefix(key, templatePrefix) || !strings.HasSuffix(key, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(key, templatePrefix), ".json")
		t, err := r.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load template %s: %v\n", id, err)
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}
