package renderer

import (
	"fmt"
	"html"
	"sort"
	"strings"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
	"github.com/mailsmith/mailsmith/internal/interp"
	"github.com/mailsmith/mailsmith/internal/models"
)

// renderFunc renders one node (and its children) into the context.
type renderFunc func(rc *renderContext, n *models.DocumentNode) error

// handlers is the single dispatch table over the closed node type set. A
// new component kind means a deliberate entry here, not type checks in the
// walk. Populated in init: the render funcs recurse back through the table,
// so a composite literal would form an initialization cycle.
var handlers map[models.NodeType]renderFunc

func init() {
	handlers = map[models.NodeType]renderFunc{
		models.NodeContainer: renderContainer,
		models.NodeSection:   renderSection,
		models.NodeColumns:   renderColumns,
		models.NodeColumn:    renderColumn,
		models.NodeHeading:   renderHeading,
		models.NodeText:      renderText,
		models.NodeImage:     renderImage,
		models.NodeButton:    renderButton,
		models.NodeDivider:   renderDivider,
		models.NodeSpacer:    renderSpacer,
	}
}

// styleProperties are the node property names emitted as CSS declarations.
// Everything else is content or markup-attribute data.
var styleProperties = map[string]bool{
	"backgroundColor": true, "color": true,
	"padding": true, "paddingTop": true, "paddingRight": true, "paddingBottom": true, "paddingLeft": true,
	"margin": true, "marginTop": true, "marginRight": true, "marginBottom": true, "marginLeft": true,
	"textAlign": true, "fontSize": true, "fontFamily": true, "fontWeight": true, "fontStyle": true,
	"lineHeight": true, "letterSpacing": true, "textDecoration": true,
	"border": true, "borderColor": true, "borderWidth": true, "borderStyle": true, "borderRadius": true,
	"width": true, "height": true, "maxWidth": true, "minHeight": true,
	"display": true, "verticalAlign": true,
}

type declaration struct {
	property string
	value    string
}

type styleRule struct {
	selector     string
	declarations []declaration
}

type renderContext struct {
	body     strings.Builder
	exporter *Exporter
	template *models.Template
	data     map[string]interface{}
	opts     ExportOptions
	rules    []styleRule
	warnings []string
	depth    int
}

// renderDocument walks the document tree and assembles a standalone HTML
// page around it.
func (e *Exporter) renderDocument(t *models.Template, data map[string]interface{}, opts ExportOptions) (string, []string, error) {
	rc := &renderContext{
		exporter: e,
		template: t,
		data:     data,
		opts:     opts,
		depth:    2,
	}
	if err := rc.renderNode(t.Document); err != nil {
		return "", nil, err
	}

	var doc strings.Builder
	nl := ""
	if opts.PrettyPrint {
		nl = "\n"
	}
	doc.WriteString("<!DOCTYPE html>" + nl)
	doc.WriteString("<html>" + nl)
	doc.WriteString("<head>" + nl)
	doc.WriteString(`<meta charset="utf-8">` + nl)
	doc.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + nl)
	doc.WriteString("<title>" + html.EscapeString(rc.interpolate(t.Metadata.Name)) + "</title>" + nl)
	if len(rc.rules) > 0 {
		doc.WriteString("<style>" + nl)
		for _, rule := range rc.rules {
			doc.WriteString(rule.selector + " { " + joinDeclarations(rule.declarations) + "; }" + nl)
		}
		doc.WriteString("</style>" + nl)
	}
	doc.WriteString("</head>" + nl)
	doc.WriteString(`<body style="margin: 0; padding: 0;">`)
	doc.WriteString(rc.body.String())
	if opts.PrettyPrint {
		doc.WriteString("\n")
	}
	doc.WriteString("</body>" + nl)
	doc.WriteString("</html>" + nl)
	return doc.String(), rc.warnings, nil
}

func (rc *renderContext) renderNode(n *models.DocumentNode) error {
	handler, ok := handlers[n.Type]
	if !ok {
		return apperrors.ExportError(n.ID, string(n.Type), "no render handler registered")
	}
	return handler(rc, n)
}

func (rc *renderContext) renderChildren(n *models.DocumentNode) error {
	rc.depth++
	for _, c := range n.Children {
		if err := rc.renderNode(c); err != nil {
			return err
		}
	}
	rc.depth--
	return nil
}

// interpolate expands {{expr}} tokens in a property value, collecting any
// engine warnings on the context.
func (rc *renderContext) interpolate(s string) string {
	if !interp.HasTokens(s) {
		return s
	}
	out, warns := rc.exporter.engine.Interpolate(s, rc.data)
	rc.warnings = append(rc.warnings, warns...)
	return out
}

// propString fetches a property as interpolated text.
func (rc *renderContext) propString(n *models.DocumentNode, key string) string {
	v, ok := n.Properties[key]
	if !ok {
		return ""
	}
	return rc.interpolate(interp.Stringify(v))
}

// styleDeclarations merges a handler's base styles with the node's declared
// style properties. Declared values override base values; declared order is
// sorted for deterministic output.
func (rc *renderContext) styleDeclarations(n *models.DocumentNode, base []declaration, except ...string) []declaration {
	skip := make(map[string]bool, len(except))
	for _, e := range except {
		skip[e] = true
	}
	declared := make(map[string]string)
	var keys []string
	for key, v := range n.Properties {
		if !styleProperties[key] || skip[key] {
			continue
		}
		declared[camelToKebab(key)] = rc.interpolate(interp.Stringify(v))
		keys = append(keys, camelToKebab(key))
	}
	sort.Strings(keys)

	var decls []declaration
	for _, d := range base {
		if _, overridden := declared[d.property]; overridden {
			continue
		}
		decls = append(decls, d)
	}
	for _, k := range keys {
		decls = append(decls, declaration{k, declared[k]})
	}
	return decls
}

// writeOpen emits an opening tag with deterministic attribute order:
// id, data-node-id, markup attributes (as given), class, style.
func (rc *renderContext) writeOpen(tag string, n *models.DocumentNode, class string, attrs []declaration, decls []declaration, selfClose bool) {
	rc.newline()
	rc.body.WriteString("<" + tag)
	if len(decls) > 0 && !rc.opts.InlineStyles {
		rc.body.WriteString(` id="` + html.EscapeString(n.ID) + `"`)
		rc.rules = append(rc.rules, styleRule{selector: "#" + n.ID, declarations: decls})
	}
	if rc.exporter.emitNodeIDs {
		rc.body.WriteString(` data-node-id="` + html.EscapeString(n.ID) + `"`)
	}
	for _, a := range attrs {
		rc.body.WriteString(" " + a.property + `="` + html.EscapeString(a.value) + `"`)
	}
	if class != "" {
		rc.body.WriteString(` class="` + class + `"`)
	}
	if len(decls) > 0 && rc.opts.InlineStyles {
		rc.body.WriteString(` style="` + html.EscapeString(joinDeclarations(decls)) + `"`)
	}
	if selfClose {
		rc.body.WriteString("/>")
		return
	}
	rc.body.WriteString(">")
}

func (rc *renderContext) writeClose(tag string, newline bool) {
	if newline {
		rc.newline()
	}
	rc.body.WriteString("</" + tag + ">")
}

func (rc *renderContext) newline() {
	if !rc.opts.PrettyPrint {
		return
	}
	rc.body.WriteString("\n" + strings.Repeat("  ", rc.depth))
}

func joinDeclarations(decls []declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.property + ": " + d.value
	}
	return strings.Join(parts, "; ")
}

func camelToKebab(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('-')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- handlers ---

func renderContainer(rc *renderContext, n *models.DocumentNode) error {
	width := rc.template.Settings.CanvasDimensions.Width
	if width <= 0 {
		width = 600
	}
	base := []declaration{
		{"width", fmt.Sprintf("%dpx", width)},
		{"margin", "0 auto"},
	}
	rc.writeOpen("div", n, "container", nil, rc.styleDeclarations(n, base), false)
	if err := rc.renderChildren(n); err != nil {
		return err
	}
	rc.writeClose("div", true)
	return nil
}

func renderSection(rc *renderContext, n *models.DocumentNode) error {
	rc.writeOpen("div", n, "section", nil, rc.styleDeclarations(n, nil), false)
	if err := rc.renderChildren(n); err != nil {
		return err
	}
	rc.writeClose("div", true)
	return nil
}

func renderColumns(rc *renderContext, n *models.DocumentNode) error {
	base := []declaration{{"display", "flex"}}
	rc.writeOpen("div", n, "columns", nil, rc.styleDeclarations(n, base), false)
	if err := rc.renderChildren(n); err != nil {
		return err
	}
	rc.writeClose("div", true)
	return nil
}

func renderColumn(rc *renderContext, n *models.DocumentNode) error {
	rc.writeOpen("div", n, "column", nil, rc.styleDeclarations(n, nil), false)
	if err := rc.renderChildren(n); err != nil {
		return err
	}
	rc.writeClose("div", true)
	return nil
}

func renderHeading(rc *renderContext, n *models.DocumentNode) error {
	level := int(interp.ToFloat(n.Properties["level"]))
	if level < 1 || level > 6 {
		level = 2
	}
	tag := fmt.Sprintf("h%d", level)
	rc.writeOpen(tag, n, "", nil, rc.styleDeclarations(n, nil), false)
	rc.body.WriteString(html.EscapeString(rc.propString(n, "text")))
	rc.writeClose(tag, false)
	return nil
}

func renderText(rc *renderContext, n *models.DocumentNode) error {
	rc.writeOpen("p", n, "", nil, rc.styleDeclarations(n, nil), false)
	rc.body.WriteString(html.EscapeString(rc.propString(n, "text")))
	rc.writeClose("p", false)
	return nil
}

func renderImage(rc *renderContext, n *models.DocumentNode) error {
	attrs := []declaration{{"src", rc.propString(n, "src")}}
	if alt := rc.propString(n, "alt"); alt != "" {
		attrs = append(attrs, declaration{"alt", alt})
	}
	base := []declaration{{"display", "block"}, {"max-width", "100%"}}
	rc.writeOpen("img", n, "", attrs, rc.styleDeclarations(n, base), true)
	return nil
}

func renderButton(rc *renderContext, n *models.DocumentNode) error {
	href := rc.propString(n, "href")
	if href == "" {
		href = "#"
	}
	label := rc.propString(n, "label")
	if label == "" {
		label = rc.propString(n, "text")
	}
	base := []declaration{
		{"display", "inline-block"},
		{"text-decoration", "none"},
	}
	rc.writeOpen("a", n, "button", []declaration{{"href", href}}, rc.styleDeclarations(n, base), false)
	rc.body.WriteString(html.EscapeString(label))
	rc.writeClose("a", false)
	return nil
}

func renderDivider(rc *renderContext, n *models.DocumentNode) error {
	base := []declaration{
		{"border", "none"},
		{"border-top", "1px solid #cccccc"},
	}
	rc.writeOpen("hr", n, "", nil, rc.styleDeclarations(n, base), true)
	return nil
}

func renderSpacer(rc *renderContext, n *models.DocumentNode) error {
	height := int(interp.ToFloat(n.Properties["height"]))
	if height <= 0 {
		height = 20
	}
	base := []declaration{
		{"height", fmt.Sprintf("%dpx", height)},
		{"line-height", fmt.Sprintf("%dpx", height)},
		{"font-size", "0"},
	}
	rc.writeOpen("div", n, "spacer", nil, rc.styleDeclarations(n, base, "height"), false)
	rc.writeClose("div", false)
	return nil
}
