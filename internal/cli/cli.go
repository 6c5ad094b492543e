// Package cli provides the headless command-line interface. Every command
// maps onto one service operation; flag parsing is deliberately simple
// (positional command word, then hand-parsed flags) so the binary stays
// scriptable without a CLI framework.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mailsmith/mailsmith/internal/i18n"
	"github.com/mailsmith/mailsmith/internal/models"
	"github.com/mailsmith/mailsmith/internal/renderer"
	"github.com/mailsmith/mailsmith/internal/service"
)

// CLI provides headless command-line interface functionality
type CLI struct {
	service       *service.Service
	translator    i18n.Translator
	targetClients []string
}

// NewCLI creates a new CLI instance
func NewCLI(svc *service.Service, translator i18n.Translator) *CLI {
	if translator == nil {
		translator = i18n.NewMapTranslator(nil)
	}
	return &CLI{service: svc, translator: translator}
}

// SetTargetClients narrows compatibility output to the given client ids
// (from the config's target_clients). Client-agnostic issues always show.
func (c *CLI) SetTargetClients(clients []string) {
	c.targetClients = clients
}

// ExecuteCommand processes a CLI command and returns the result
func (c *CLI) ExecuteCommand(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "list", "ls":
		return c.listTemplates(commandArgs)
	case "search":
		return c.searchTemplates(commandArgs)
	case "get", "show":
		return c.showTemplate(commandArgs)
	case "create", "new":
		return c.createTemplate(commandArgs)
	case "delete", "rm":
		return c.deleteTemplate(commandArgs)
	case "export":
		return c.exportTemplate(commandArgs)
	case "validate":
		return c.validateTemplate(commandArgs)
	case "check", "compat":
		return c.checkCompatibility(commandArgs)
	case "variables", "vars":
		return c.listVariables(commandArgs)
	case "help":
		return c.printHelp(commandArgs)
	default:
		return fmt.Errorf("unknown command: %s. Use 'help' for usage information", command)
	}
}

// listTemplates lists all templates
func (c *CLI) listTemplates(args []string) error {
	var format string
	var category string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		case "--category", "-c":
			if i+1 < len(args) {
				category = args[i+1]
				i++
			}
		}
	}

	templates, err := c.service.ListTemplates(context.Background(), category)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	return c.formatOutput(templates, format)
}

// searchTemplates fuzzy-searches templates by name, description and category
func (c *CLI) searchTemplates(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search requires a query")
	}

	var format string
	var queryParts []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		default:
			queryParts = append(queryParts, args[i])
		}
	}

	templates, err := c.service.SearchTemplates(context.Background(), strings.Join(queryParts, " "))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return c.formatOutput(templates, format)
}

// showTemplate displays a specific template
func (c *CLI) showTemplate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("show requires a template ID")
	}

	id := args[0]
	var format string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		}
	}

	t, err := c.service.GetTemplate(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	return c.formatSingleTemplate(t, format)
}

// createTemplate creates a new template
func (c *CLI) createTemplate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("create requires a template name")
	}

	name := args[0]
	var category, description string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--category", "-c":
			if i+1 < len(args) {
				category = args[i+1]
				i++
			}
		case "--description", "-d":
			if i+1 < len(args) {
				description = args[i+1]
				i++
			}
		}
	}

	t, err := c.service.CreateTemplate(context.Background(), name, category, description)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	fmt.Println(styleSuccess.Render(c.translator.T("cli.created",
		i18n.M{"id": t.Metadata.ID}, "Created template: {id}")))
	return nil
}

// deleteTemplate deletes a template
func (c *CLI) deleteTemplate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("delete requires a template ID")
	}

	id := args[0]
	var force bool
	for _, arg := range args[1:] {
		if arg == "--force" || arg == "-f" {
			force = true
		}
	}

	if !force {
		fmt.Printf("Are you sure you want to delete template '%s'? (y/N): ", id)
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" && strings.ToLower(response) != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	if err := c.service.DeleteTemplate(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	fmt.Println(c.translator.T("cli.deleted", i18n.M{"id": id}, "Deleted template: {id}"))
	return nil
}

// exportTemplate renders a template to HTML and/or canonical JSON
func (c *CLI) exportTemplate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("export requires a template ID")
	}

	id := args[0]
	req := service.ExportRequest{Format: renderer.FormatHTML}
	var outputFile, dataFile string

	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				req.Format = renderer.Format(args[i+1])
				i++
			}
		case "--output", "-o":
			if i+1 < len(args) {
				outputFile = args[i+1]
				i++
			}
		case "--data":
			if i+1 < len(args) {
				dataFile = args[i+1]
				i++
			}
		case "--email-safe":
			req.EmailSafe = true
			req.EmailOptions.InlineCSS = true
			req.EmailOptions.UseTableLayout = true
			req.EmailOptions.AddOutlookFixes = true
		case "--inline":
			req.InlineStyles = true
		case "--pretty":
			req.PrettyPrint = true
		}
	}

	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return fmt.Errorf("failed to read data file: %w", err)
		}
		if err := json.Unmarshal(raw, &req.Data); err != nil {
			return fmt.Errorf("failed to parse data file: %w", err)
		}
	}

	result, err := c.service.ExportTemplate(context.Background(), id, req)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, styleWarning.Render("Warning: "+w))
	}

	output := result.HTML
	if req.Format == renderer.FormatJSON {
		output = result.JSON
	} else if req.Format == renderer.FormatBoth {
		combined, err := json.MarshalIndent(map[string]string{
			"html": result.HTML,
			"json": result.JSON,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal export result: %w", err)
		}
		output = string(combined)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Exported template %s to %s\n", id, outputFile)
		return nil
	}

	fmt.Print(output)
	if !strings.HasSuffix(output, "\n") {
		fmt.Println()
	}
	return nil
}

// validateTemplate checks a stored template's structural invariants
func (c *CLI) validateTemplate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("validate requires a template ID")
	}

	id := args[0]
	if err := c.service.ValidateTemplate(context.Background(), id); err != nil {
		return err
	}

	fmt.Println(styleSuccess.Render(fmt.Sprintf("Template %s is valid", id)))
	return nil
}

// checkCompatibility prints the email-client compatibility report
func (c *CLI) checkCompatibility(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("check requires a template ID")
	}

	id := args[0]
	var format string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--format", "-f":
			if i+1 < len(args) {
				format = args[i+1]
				i++
			}
		}
	}

	report, err := c.service.CheckCompatibility(context.Background(), id)
	if err != nil {
		return fmt.Errorf("compatibility check failed: %w", err)
	}

	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Println(styleHeading.Render(fmt.Sprintf("Compatibility score: %d/100", report.OverallScore)))
	if report.SafeToExport {
		fmt.Println(styleSuccess.Render("Safe to export"))
	} else {
		fmt.Println(styleError.Render("Not safe to export: critical issues found"))
	}
	issues := filterIssuesByClient(report.Issues, c.targetClients)
	for _, issue := range issues {
		sev := severityStyle(issue.Severity).Render(string(issue.Severity))
		fmt.Printf("  [%s] %s: %s\n", sev, issue.ClientID, issue.Message)
	}
	if hidden := len(report.Issues) - len(issues); hidden > 0 {
		fmt.Println(styleMuted.Render(fmt.Sprintf("  (%d issues for other clients hidden; see target_clients in config.yaml)", hidden)))
	}
	return nil
}

// filterIssuesByClient keeps issues for the listed clients plus the
// client-agnostic "general" ones. An empty list keeps everything; the score
// above is always computed over the full issue set.
func filterIssuesByClient(issues []models.CompatibilityIssue, clients []string) []models.CompatibilityIssue {
	if len(clients) == 0 {
		return issues
	}
	wanted := make(map[string]bool, len(clients))
	for _, id := range clients {
		wanted[strings.ToLower(id)] = true
	}
	var filtered []models.CompatibilityIssue
	for _, issue := range issues {
		if issue.ClientID == "general" || wanted[strings.ToLower(issue.ClientID)] {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// listVariables prints the template's resolved variable metadata
func (c *CLI) listVariables(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("variables requires a template ID")
	}

	id := args[0]
	var filter string
	for i := 1; i < len(args); i++ {
		switch args[i] {
		case "--filter":
			if i+1 < len(args) {
				filter = args[i+1]
				i++
			}
		}
	}

	t, err := c.service.GetTemplate(context.Background(), id)
	if err != nil {
		return fmt.Errorf("failed to get template: %w", err)
	}

	vars := c.service.ResolveVariables(t.DataSchema)
	if filter != "" {
		vars = c.service.FilterVariables(vars, filter)
	}
	printVariables(vars, 0)
	return nil
}

func printVariables(vars []models.VariableMetadata, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, v := range vars {
		line := fmt.Sprintf("%s%s (%s", indent, v.Path, v.Type)
		if v.IsArray {
			line += "[]"
		}
		line += ")"
		if v.Required {
			line += " [required]"
		}
		if v.Description != "" {
			line += " " + styleMuted.Render("- "+v.Description)
		}
		fmt.Println(line)
		printVariables(v.Children, depth+1)
	}
}

// formatOutput formats templates for output
func (c *CLI) formatOutput(templates []*models.Template, format string) error {
	switch format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(templates)
	case "ids":
		for _, t := range templates {
			fmt.Println(t.Metadata.ID)
		}
	case "table":
		fmt.Printf("%-38s %-30s %-15s %s\n", "ID", "Name", "Category", "Updated")
		fmt.Println(strings.Repeat("-", 95))
		for _, t := range templates {
			name := t.Metadata.Name
			if len(name) > 30 {
				name = name[:27] + "..."
			}
			fmt.Printf("%-38s %-30s %-15s %s\n",
				t.Metadata.ID, name, t.Metadata.Category,
				t.Metadata.UpdatedAt.Format("2006-01-02"))
		}
	default:
		for _, t := range templates {
			fmt.Printf("%s - %s\n", t.Metadata.ID, t.Metadata.Name)
			if t.Metadata.Description != "" {
				fmt.Printf("  %s\n", t.Metadata.Description)
			}
			if t.Metadata.Category != "" {
				fmt.Printf("  Category: %s\n", t.Metadata.Category)
			}
			fmt.Println()
		}
	}
	return nil
}

// formatSingleTemplate formats a single template for output
func (c *CLI) formatSingleTemplate(t *models.Template, format string) error {
	switch format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(t)
	default:
		fmt.Printf("ID: %s\n", t.Metadata.ID)
		fmt.Printf("Name: %s\n", t.Metadata.Name)
		if t.Metadata.Description != "" {
			fmt.Printf("Description: %s\n", t.Metadata.Description)
		}
		if t.Metadata.Category != "" {
			fmt.Printf("Category: %s\n", t.Metadata.Category)
		}
		fmt.Printf("Locale: %s\n", t.Settings.Locale)
		fmt.Printf("Canvas: %dx%d\n", t.Settings.CanvasDimensions.Width, t.Settings.CanvasDimensions.Height)
		fmt.Printf("Created: %s\n", t.Metadata.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("Updated: %s\n", t.Metadata.UpdatedAt.Format("2006-01-02 15:04"))
		nodeCount := 0
		t.Document.Walk(func(*models.DocumentNode) bool {
			nodeCount++
			return true
		})
		fmt.Printf("Nodes: %d\n", nodeCount)
	}
	return nil
}

func (c *CLI) printUsage() error {
	fmt.Println(`mailsmith - Email template authoring engine

Usage: mailsmith <command> [options]

Commands:
  create, new <name>    Create a new template
  list, ls              List all templates
  search <query>        Search templates
  get, show <id>        Show a specific template
  delete, rm <id>       Delete a template
  export <id>           Export a template to HTML and/or JSON
  validate <id>         Validate a template's structure
  check, compat <id>    Report email-client compatibility
  variables, vars <id>  List a template's data variables
  help                  Show help

Use 'mailsmith help <command>' for detailed help on a specific command.`)
	return nil
}

func (c *CLI) printHelp(args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	switch args[0] {
	case "list", "ls":
		fmt.Println(`list - List all templates

Usage: mailsmith list [options]

Options:
  --format, -f <format>    Output format (table, json, ids, default)
  --category, -c <name>    Filter by category`)

	case "search":
		fmt.Println(`search - Search templates

Usage: mailsmith search <query> [options]

Options:
  --format, -f <format>  Output format (table, json, ids, default)

Example:
  mailsmith search "order confirmation"`)

	case "create", "new":
		fmt.Println(`create - Create a new template

Usage: mailsmith create <name> [options]

Options:
  --category, -c <name>     Template category
  --description, -d <desc>  Template description

Example:
  mailsmith create "Welcome email" --category onboarding`)

	case "export":
		fmt.Println(`export - Export a template

Usage: mailsmith export <id> [options]

Options:
  --format, -f <format>   Export format (html, json, both; default html)
  --output, -o <file>     Output file (default: stdout)
  --data <file>           JSON file with interpolation data
                          (default: the template's sample data)
  --email-safe            Rewrite the HTML for legacy email clients
  --inline                Inline node styles as style attributes
  --pretty                Pretty-print the HTML output

Examples:
  mailsmith export 4f6f... --output welcome.html --email-safe
  mailsmith export 4f6f... --format json`)

	case "check", "compat":
		fmt.Println(`check - Report email-client compatibility

Usage: mailsmith check <id> [options]

Options:
  --format, -f <format>  Output format (json, default)

The report scores the template 0-100 against known client limitations.
A template with critical issues is flagged as not safe to export.`)

	case "variables", "vars":
		fmt.Println(`variables - List a template's data variables

Usage: mailsmith variables <id> [options]

Options:
  --filter <term>  Narrow variables by path, type or description`)

	case "delete", "rm":
		fmt.Println(`delete - Delete a template

Usage: mailsmith delete <id> [options]

Options:
  --force, -f  Skip the confirmation prompt`)

	default:
		fmt.Printf("No help available for command: %s\n", args[0])
	}

	return nil
}
