package commands

import (
	"fmt"

	"github.com/mailsmith/mailsmith/internal/models"
	"github.com/mailsmith/mailsmith/internal/renderer"
)

// ExportTemplateCommand is a terminal command: it reads the document and
// produces an ExportResult without mutating anything, so it never enters
// the undo stack.
type ExportTemplateCommand struct {
	base
	Template *models.Template
	Exporter *renderer.Exporter
	Options  renderer.ExportOptions

	Result *models.ExportResult
}

func NewExportTemplateCommand(t *models.Template, exporter *renderer.Exporter, opts renderer.ExportOptions) *ExportTemplateCommand {
	return &ExportTemplateCommand{
		base:     newBase(CmdExportTemplate),
		Template: t,
		Exporter: exporter,
		Options:  opts,
	}
}

func (c *ExportTemplateCommand) Validate() error {
	if c.Template == nil {
		return fmt.Errorf("no template bound")
	}
	if c.Exporter == nil {
		return fmt.Errorf("no exporter bound")
	}
	switch c.Options.Format {
	case "", renderer.FormatHTML, renderer.FormatJSON, renderer.FormatBoth:
		return nil
	default:
		return fmt.Errorf("unknown export format %q", c.Options.Format)
	}
}

func (c *ExportTemplateCommand) Execute() error {
	result, err := c.Exporter.Export(c.Template, c.Options)
	if err != nil {
		return err
	}
	c.Result = result
	return nil
}
