// Package emailsafe rewrites generic exported HTML into a form legacy mail
// clients can render: table-based layout, inlined CSS and Outlook-only
// conditional markup. The transform order is fixed (structural rewrite,
// then style inlining, then client fixes) since each later step depends
// on the final DOM shape left by the earlier ones. The service never drops
// information silently: anything it cannot safely inline stays in a <style>
// block and is reported as a warning.
package emailsafe

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	apperrors "github.com/mailsmith/mailsmith/internal/errors"
)

// Options selects which rewrites to apply.
type Options struct {
	InlineCSS       bool
	UseTableLayout  bool
	AddOutlookFixes bool
}

// Result is the rewritten document plus non-fatal degradation notes.
type Result struct {
	HTML     string
	Warnings []string
}

// Service performs email-safe rewrites. It is stateless and safe to share.
type Service struct{}

// New creates an email export service.
func New() *Service {
	return &Service{}
}

// Export applies the selected rewrites to the input HTML.
func (s *Service) Export(input string, opts Options) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExportFailure, "failed to parse HTML for email-safe export")
	}

	var warnings []string

	if opts.UseTableLayout {
		rewriteTableLayout(doc)
	}
	if opts.InlineCSS {
		warnings = append(warnings, inlineCSS(doc)...)
	}
	if opts.AddOutlookFixes {
		addOutlookFixes(doc)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeExportFailure, "failed to render email-safe HTML")
	}
	return &Result{HTML: buf.String(), Warnings: warnings}, nil
}

// --- shared tree helpers (html.Node children are a linked list) ---

// findAll returns the element nodes matching pred in document order.
func findAll(root *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

// findFirst returns the first element named tag in document order.
func findFirst(root *html.Node, tag string) *html.Node {
	nodes := findAll(root, func(n *html.Node) bool { return n.Data == tag })
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// getAttr returns the value of the named attribute.
func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// setAttr sets or replaces the named attribute.
func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// removeAttr deletes the named attribute if present.
func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// hasClass reports whether the element carries the given class.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// reparentChildren moves every child of from under to, preserving order.
func reparentChildren(from, to *html.Node) {
	for from.FirstChild != nil {
		c := from.FirstChild
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
