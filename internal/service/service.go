// Package service provides the business logic for template management: CRUD
// against the template repository, search, export (with the optional
// email-safe pass), validation and compatibility checks, and editing
// sessions that drive the reversible command engine.
package service

import (
	"context"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/mailsmith/mailsmith/internal/commands"
	"github.com/mailsmith/mailsmith/internal/compat"
	"github.com/mailsmith/mailsmith/internal/emailsafe"
	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/interp"
	"github.com/mailsmith/mailsmith/internal/models"
	"github.com/mailsmith/mailsmith/internal/renderer"
	"github.com/mailsmith/mailsmith/internal/schema"
	"github.com/mailsmith/mailsmith/internal/storage"
	"github.com/mailsmith/mailsmith/internal/validation"
)

// Options configures a Service.
type Options struct {
	// HistoryLimit caps each editing session's undo stack; <= 0 selects the
	// command engine default.
	HistoryLimit int
	// EmitNodeIDs adds data-node-id attributes to exported HTML.
	EmitNodeIDs bool
}

// Service wires the engines together around one template repository.
type Service struct {
	repo      *storage.TemplateRepository
	engine    *interp.Engine
	exporter  *renderer.Exporter
	emailSafe *emailsafe.Service
	checker   *compat.Checker
	validator *validation.Validator
	opts      Options
}

// NewService creates a service over the given storage adapter.
func NewService(adapter storage.Adapter, opts Options) *Service {
	engine := interp.NewEngine(nil)
	return &Service{
		repo:      storage.NewTemplateRepository(adapter),
		engine:    engine,
		exporter:  renderer.NewExporter(engine, renderer.WithNodeIDs(opts.EmitNodeIDs)),
		emailSafe: emailsafe.New(),
		checker:   compat.NewChecker(),
		validator: validation.NewValidator(),
		opts:      opts,
	}
}

// Helpers exposes the helper registry so callers can register custom
// interpolation helpers before exporting.
func (s *Service) Helpers() *interp.Registry {
	return s.engine.Registry()
}

// CreateTemplate creates and persists a new empty template.
func (s *Service) CreateTemplate(ctx context.Context, name, category, description string) (*models.Template, error) {
	result := s.validator.Validate("create_template", map[string]interface{}{
		"name": name, "category": category, "description": description,
	})
	if !result.Valid {
		return nil, result.ToAppError()
	}
	t := models.NewTemplate(name)
	t.Metadata.Category = category
	t.Metadata.Description = description
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTemplate loads a template by id.
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	result := s.validator.Validate("get_template", map[string]interface{}{"id": id})
	if !result.Valid {
		return nil, result.ToAppError()
	}
	return s.repo.Load(ctx, id)
}

// SaveTemplate persists a template, bumping its updatedAt stamp.
func (s *Service) SaveTemplate(ctx context.Context, t *models.Template) error {
	if err := t.Validate(); err != nil {
		return apperrors.ValidationError(err.Error())
	}
	t.Metadata.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return s.repo.Save(ctx, t)
}

// ListTemplates returns all templates, optionally narrowed to a category.
func (s *Service) ListTemplates(ctx context.Context, category string) ([]*models.Template, error) {
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return templates, nil
	}
	var filtered []*models.Template
	for _, t := range templates {
		if t.Metadata.Category == category {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// templateSource adapts a template list for fuzzy matching.
type templateSource []*models.Template

func (s templateSource) Len() int            { return len(s) }
func (s templateSource) String(i int) string { return s[i].FilterValue() }

// SearchTemplates fuzzy-ranks templates against query by name, description
// and category.
func (s *Service) SearchTemplates(ctx context.Context, query string) ([]*models.Template, error) {
	result := s.validator.Validate("search_templates", map[string]interface{}{"query": query})
	if !result.Valid {
		return nil, result.ToAppError()
	}
	templates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := fuzzy.FindFrom(query, templateSource(templates))
	ranked := make([]*models.Template, len(matches))
	for i, m := range matches {
		ranked[i] = templates[m.Index]
	}
	return ranked, nil
}

// DeleteTemplate removes a template by id.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	result := s.validator.Validate("delete_template", map[string]interface{}{"id": id})
	if !result.Valid {
		return result.ToAppError()
	}
	return s.repo.Delete(ctx, id)
}

// ExportRequest describes one export call.
type ExportRequest struct {
	Format       renderer.Format
	InlineStyles bool
	PrettyPrint  bool
	Data         map[string]interface{}

	// EmailSafe runs the rewrite pipeline on the HTML output.
	EmailSafe    bool
	EmailOptions emailsafe.Options
}

// ExportTemplate loads a template and serializes it. With EmailSafe set the
// HTML output is additionally rewritten for legacy mail clients; rewrite
// warnings are appended to the result's warning list.
func (s *Service) ExportTemplate(ctx context.Context, id string, req ExportRequest) (*models.ExportResult, error) {
	result := s.validator.Validate("export_template", map[string]interface{}{
		"id":     id,
		"format": string(req.Format),
	})
	if !result.Valid {
		return nil, result.ToAppError()
	}
	t, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Export(t, req)
}

// Export serializes an already-loaded template.
func (s *Service) Export(t *models.Template, req ExportRequest) (*models.ExportResult, error) {
	cmd := commands.NewExportTemplateCommand(t, s.exporter, renderer.ExportOptions{
		Format:       req.Format,
		InlineStyles: req.InlineStyles,
		PrettyPrint:  req.PrettyPrint,
		Data:         req.Data,
	})
	if err := cmd.Validate(); err != nil {
		return nil, apperrors.ValidationError(err.Error())
	}
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	result := cmd.Result
	if req.EmailSafe && result.HTML != "" {
		rewritten, err := s.emailSafe.Export(result.HTML, req.EmailOptions)
		if err != nil {
			return nil, err
		}
		result.HTML = rewritten.HTML
		result.Warnings = append(result.Warnings, rewritten.Warnings...)
	}
	return result, nil
}

// ValidateTemplate checks a stored template's structural invariants.
func (s *Service) ValidateTemplate(ctx context.Context, id string) error {
	result := s.validator.Validate("validate_template", map[string]interface{}{"id": id})
	if !result.Valid {
		return result.ToAppError()
	}
	t, err := s.repo.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return apperrors.ValidationError(err.Error()).WithContext("templateId", id)
	}
	return nil
}

// CheckCompatibility scores a stored template's document model.
func (s *Service) CheckCompatibility(ctx context.Context, id string) (*models.CompatibilityReport, error) {
	t, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.checker.CheckTemplate(t), nil
}

// CheckExportedHTML scores a rendered document, catching issues only
// visible after interpolation and rewriting.
func (s *Service) CheckExportedHTML(html string) (*models.CompatibilityReport, error) {
	return s.checker.CheckHTML(html)
}

// ResolveVariables is a convenience for surfacing a schema's variables; it
// lives on the service so UI surfaces need only one dependency.
func (s *Service) ResolveVariables(ds models.DataSchema) []models.VariableMetadata {
	return schema.Resolve(ds)
}

// FilterVariables narrows resolved variables by a search term.
func (s *Service) FilterVariables(vars []models.VariableMetadata, term string) []models.VariableMetadata {
	return schema.Filter(vars, term)
}
