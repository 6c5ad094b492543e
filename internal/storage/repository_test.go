package storage

import (
	"context"
	"testing"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/models"
	"github.com/mailsmith/mailsmith/internal/renderer"
)

func newTestRepo(t *testing.T) *TemplateRepository {
	t.Helper()
	return NewTemplateRepository(newTestStore(t))
}

func sampleTemplate(t *testing.T, name string) *models.Template {
	t.Helper()
	tmpl := models.NewTemplate(name)
	section := &models.DocumentNode{ID: tmpl.Metadata.ID + "-s", Type: models.NodeSection}
	if err := tmpl.InsertNode(tmpl.Document.ID, 0, section); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	return tmpl
}

func TestRepositorySaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tmpl := sampleTemplate(t, "Round trip")

	if err := repo.Save(ctx, tmpl); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := repo.Load(ctx, tmpl.Metadata.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// The at-rest form is the canonical JSON export, so a round-trip must be
	// byte-identical.
	before, err := renderer.CanonicalJSON(tmpl)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	after, err := renderer.CanonicalJSON(loaded)
	if err != nil {
		t.Fatalf("serialize failed: %v", err)
	}
	if before != after {
		t.Error("save/load round-trip is not byte-identical")
	}
}

func TestRepositoryLoadMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Load(context.Background(), "nope")
	if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestRepositoryLoadCorrupt(t *testing.T) {
	store := newTestStore(t)
	repo := NewTemplateRepository(store)
	ctx := context.Background()

	if err := store.Set(ctx, "templates/bad.json", "{not json"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	_, err := repo.Load(ctx, "bad")
	if !apperrors.IsCode(err, apperrors.ErrCodeFileCorrupted) {
		t.Errorf("expected FILE_CORRUPTED, got %v", err)
	}
}

func TestRepositoryDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	tmpl := sampleTemplate(t, "To delete")

	if err := repo.Save(ctx, tmpl); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Delete(ctx, tmpl.Metadata.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Load(ctx, tmpl.Metadata.ID); !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}

	if err := repo.Delete(ctx, tmpl.Metadata.ID); !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("deleting a missing template should be NOT_FOUND, got %v", err)
	}
}

func TestRepositoryList(t *testing.T) {
	store := newTestStore(t)
	repo := NewTemplateRepository(store)
	ctx := context.Background()

	first := sampleTemplate(t, "First")
	second := sampleTemplate(t, "Second")
	for _, tmpl := range []*models.Template{first, second} {
		if err := repo.Save(ctx, tmpl); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	// Unrelated and unreadable entries must not break the listing.
	if err := store.Set(ctx, "config.yaml", "x"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := store.Set(ctx, "templates/corrupt.json", "{"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	templates, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	names := map[string]bool{}
	for _, tmpl := range templates {
		names[tmpl.Metadata.Name] = true
	}
	if !names["First"] || !names["Second"] {
		t.Errorf("unexpected templates: %v", names)
	}
}

func TestRepositorySaveWithoutID(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Save(context.Background(), &models.Template{})
	if !apperrors.IsCode(err, apperrors.ErrCodeValidation) {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}
