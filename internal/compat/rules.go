package compat

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/mailsmith/mailsmith/internal/interp"
	"github.com/mailsmith/mailsmith/internal/models"
)

// Client identifiers used in reports.
const (
	ClientOutlook = "outlook"
	ClientGmail   = "gmail"
	ClientApple   = "apple-mail"
	ClientGeneral = "general"
)

// maxSafeImageWidth is the widest image the common 600px canvas renders
// without horizontal scrolling in desktop clients.
const maxSafeImageWidth = 600

// unsupportedStyleProps are declared style properties Outlook's Word
// engine ignores or mangles.
var unsupportedStyleProps = []string{"borderRadius", "maxWidth", "minHeight"}

func defaultTemplateRules() []TemplateRule {
	return []TemplateRule{
		{
			ID:       "flex-columns",
			ClientID: ClientOutlook,
			Severity: models.IssueHigh,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					if n.Type == models.NodeColumns {
						msgs = append(msgs, fmt.Sprintf("node %s uses a flex column layout; Outlook requires table-based layout (export with useTableLayout)", n.ID))
					}
				})
				return msgs
			},
		},
		{
			ID:       "unsupported-style-property",
			ClientID: ClientOutlook,
			Severity: models.IssueMedium,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					for _, prop := range unsupportedStyleProps {
						if _, ok := n.Properties[prop]; ok {
							msgs = append(msgs, fmt.Sprintf("node %s uses %q, which Outlook does not support", n.ID, prop))
						}
					}
				})
				return msgs
			},
		},
		{
			ID:       "oversized-image",
			ClientID: ClientGeneral,
			Severity: models.IssueMedium,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					if n.Type != models.NodeImage {
						return
					}
					if w := imageWidth(n); w > maxSafeImageWidth {
						msgs = append(msgs, fmt.Sprintf("image %s is %dpx wide, above the %dpx safe width", n.ID, w, maxSafeImageWidth))
					}
				})
				return msgs
			},
		},
		{
			ID:       "unsupported-image-format",
			ClientID: ClientOutlook,
			Severity: models.IssueCritical,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					if n.Type != models.NodeImage {
						return
					}
					src := strings.ToLower(interp.Stringify(n.Properties["src"]))
					src, _, _ = strings.Cut(src, "?")
					if strings.HasSuffix(src, ".svg") || strings.HasSuffix(src, ".webp") {
						msgs = append(msgs, fmt.Sprintf("image %s uses a format (%s) Outlook and older clients cannot render", n.ID, src[strings.LastIndex(src, ".")+1:]))
					}
				})
				return msgs
			},
		},
		{
			ID:       "insecure-image-source",
			ClientID: ClientGmail,
			Severity: models.IssueLow,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					if n.Type != models.NodeImage {
						return
					}
					src := interp.Stringify(n.Properties["src"])
					if strings.HasPrefix(src, "http://") {
						msgs = append(msgs, fmt.Sprintf("image %s loads over http; Gmail proxies may block mixed content", n.ID))
					}
				})
				return msgs
			},
		},
		{
			ID:       "custom-font",
			ClientID: ClientOutlook,
			Severity: models.IssueLow,
			Check: func(t *models.Template) []string {
				var msgs []string
				eachNode(t, func(n *models.DocumentNode) {
					family := strings.ToLower(interp.Stringify(n.Properties["fontFamily"]))
					if family == "" || hasWebSafeFallback(family) {
						return
					}
					msgs = append(msgs, fmt.Sprintf("node %s uses font %q without a web-safe fallback; Outlook substitutes Times New Roman", n.ID, family))
				})
				return msgs
			},
		},
	}
}

func defaultHTMLRules() []HTMLRule {
	return []HTMLRule{
		{
			ID:       "unsupported-element",
			ClientID: ClientGeneral,
			Severity: models.IssueCritical,
			Check: func(doc *html.Node, raw string) []string {
				var msgs []string
				eachElement(doc, func(n *html.Node) {
					switch n.Data {
					case "script", "form", "iframe", "video", "audio", "object", "embed":
						msgs = append(msgs, fmt.Sprintf("<%s> elements are stripped or blocked by all major clients", n.Data))
					}
				})
				return msgs
			},
		},
		{
			ID:       "flex-layout",
			ClientID: ClientOutlook,
			Severity: models.IssueHigh,
			Check: func(doc *html.Node, raw string) []string {
				if strings.Contains(strings.ReplaceAll(raw, " ", ""), "display:flex") {
					return []string{"display: flex is not supported by Outlook; use table layout"}
				}
				return nil
			},
		},
		{
			ID:       "positioned-content",
			ClientID: ClientOutlook,
			Severity: models.IssueHigh,
			Check: func(doc *html.Node, raw string) []string {
				compact := strings.ReplaceAll(raw, " ", "")
				if strings.Contains(compact, "position:absolute") || strings.Contains(compact, "position:fixed") {
					return []string{"absolute/fixed positioning is ignored by Outlook"}
				}
				return nil
			},
		},
		{
			ID:       "background-image",
			ClientID: ClientOutlook,
			Severity: models.IssueMedium,
			Check: func(doc *html.Node, raw string) []string {
				if strings.Contains(raw, "background-image") {
					return []string{"CSS background images are not rendered by Outlook; use VML fallbacks"}
				}
				return nil
			},
		},
		{
			ID:       "media-query",
			ClientID: ClientGmail,
			Severity: models.IssueMedium,
			Check: func(doc *html.Node, raw string) []string {
				if strings.Contains(raw, "@media") {
					return []string{"media queries are stripped by several Gmail surfaces; core layout must not depend on them"}
				}
				return nil
			},
		},
		{
			ID:       "missing-alt-text",
			ClientID: ClientGeneral,
			Severity: models.IssueLow,
			Check: func(doc *html.Node, raw string) []string {
				var msgs []string
				eachElement(doc, func(n *html.Node) {
					if n.Data != "img" {
						return
					}
					for _, a := range n.Attr {
						if a.Key == "alt" {
							return
						}
					}
					msgs = append(msgs, "image without alt text; clients that block images show nothing")
				})
				return msgs
			},
		},
	}
}

func eachNode(t *models.Template, fn func(n *models.DocumentNode)) {
	if t == nil || t.Document == nil {
		return
	}
	t.Document.Walk(func(n *models.DocumentNode) bool {
		fn(n)
		return true
	})
}

func eachElement(root *html.Node, fn func(n *html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			fn(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

func imageWidth(n *models.DocumentNode) int {
	raw := interp.Stringify(n.Properties["width"])
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
	return int(interp.ToFloat(raw))
}

var webSafeFonts = []string{
	"arial", "helvetica", "times", "georgia", "courier", "verdana",
	"tahoma", "trebuchet", "sans-serif", "serif", "monospace",
}

func hasWebSafeFallback(family string) bool {
	for _, f := range webSafeFonts {
		if strings.Contains(family, f) {
			return true
		}
	}
	return false
}
