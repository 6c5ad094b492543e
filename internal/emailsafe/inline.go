package emailsafe

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// inlineCSS moves stylesheet rules into element style attributes. Rules are
// applied in document order and a later declaration for the same property
// overrides an earlier one; a pre-existing inline style always wins over
// sheet rules. Rules that cannot be safely inlined (at-rules, pseudo
// selectors, combinators) are kept in a single <style> block and reported
// as warnings. When everything inlines, no <style> block remains.
func inlineCSS(doc *html.Node) []string {
	styleNodes := findAll(doc, func(n *html.Node) bool { return n.Data == "style" })
	if len(styleNodes) == 0 {
		return nil
	}

	var warnings []string
	var inlinable []*css.Rule
	var kept []string

	for _, styleNode := range styleNodes {
		sheet, err := parser.Parse(textContent(styleNode))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not parse stylesheet: %v; kept in <style> block", err))
			kept = append(kept, textContent(styleNode))
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.Kind == css.AtRule {
				warnings = append(warnings, fmt.Sprintf("cannot inline %s rule; kept in <style> block", rule.Name))
				kept = append(kept, rule.String())
				continue
			}
			var simple, complex []string
			for _, sel := range rule.Selectors {
				if isSimpleSelector(sel) {
					simple = append(simple, sel)
				} else {
					complex = append(complex, sel)
				}
			}
			if len(complex) > 0 {
				warnings = append(warnings, fmt.Sprintf("cannot inline selector %q; kept in <style> block", strings.Join(complex, ", ")))
				kept = append(kept, ruleText(complex, rule.Declarations))
			}
			if len(simple) > 0 {
				narrowed := *rule
				narrowed.Selectors = simple
				inlinable = append(inlinable, &narrowed)
			}
		}
	}

	applyRules(doc, inlinable)

	// Drop the original style elements; re-add one block for what stayed.
	for _, styleNode := range styleNodes {
		styleNode.Parent.RemoveChild(styleNode)
	}
	if len(kept) > 0 {
		head := findFirst(doc, "head")
		if head == nil {
			head = doc
		}
		block := &html.Node{Type: html.ElementNode, Data: "style"}
		block.AppendChild(&html.Node{Type: html.TextNode, Data: "\n" + strings.Join(kept, "\n") + "\n"})
		head.AppendChild(block)
	}
	return warnings
}

// isSimpleSelector accepts tag, #id, .class and compound forms of those.
// Anything with combinators, pseudo classes/elements, attribute selectors
// or the universal selector is not safe to inline statically.
func isSimpleSelector(sel string) bool {
	sel = strings.TrimSpace(sel)
	if sel == "" || strings.ContainsAny(sel, " \t>+~:[*,") {
		return false
	}
	_, ok := parseSimpleSelector(sel)
	return ok
}

type simpleSelector struct {
	tag     string
	id      string
	classes []string
}

func parseSimpleSelector(sel string) (simpleSelector, bool) {
	var parsed simpleSelector
	rest := sel
	for rest != "" {
		marker := byte(0)
		if rest[0] == '#' || rest[0] == '.' {
			marker = rest[0]
			rest = rest[1:]
		}
		end := strings.IndexAny(rest, "#.")
		var token string
		if end == -1 {
			token, rest = rest, ""
		} else {
			token, rest = rest[:end], rest[end:]
		}
		if token == "" {
			return parsed, false
		}
		switch marker {
		case '#':
			parsed.id = token
		case '.':
			parsed.classes = append(parsed.classes, token)
		default:
			parsed.tag = strings.ToLower(token)
		}
	}
	return parsed, true
}

func (s simpleSelector) matches(n *html.Node) bool {
	if s.tag != "" && s.tag != n.Data {
		return false
	}
	if s.id != "" && s.id != getAttr(n, "id") {
		return false
	}
	for _, class := range s.classes {
		if !hasClass(n, class) {
			return false
		}
	}
	return true
}

// applyRules walks every element and overlays matching rule declarations in
// rule order (last wins), then re-overlays the element's own inline style.
func applyRules(doc *html.Node, rules []*css.Rule) {
	if len(rules) == 0 {
		return
	}
	elements := findAll(doc, func(n *html.Node) bool { return true })
	for _, el := range elements {
		merged := newDeclSet()
		for _, rule := range rules {
			for _, sel := range rule.Selectors {
				parsed, ok := parseSimpleSelector(strings.TrimSpace(sel))
				if !ok || !parsed.matches(el) {
					continue
				}
				for _, d := range rule.Declarations {
					merged.set(d.Property, d.Value)
				}
				break
			}
		}
		if merged.empty() {
			continue
		}
		// The element's own inline style has final say. The parser only
		// yields values for semicolon-terminated declarations, so terminate
		// the attribute before re-parsing it.
		if existing := strings.TrimSpace(getAttr(el, "style")); existing != "" {
			if !strings.HasSuffix(existing, ";") {
				existing += ";"
			}
			if decls, err := parser.ParseDeclarations(existing); err == nil {
				for _, d := range decls {
					if d.Value != "" {
						merged.set(d.Property, d.Value)
					}
				}
			}
		}
		setAttr(el, "style", merged.String())
	}
}

// declSet is an ordered property map: first-set order, last-set value.
type declSet struct {
	order  []string
	values map[string]string
}

func newDeclSet() *declSet {
	return &declSet{values: make(map[string]string)}
}

func (s *declSet) set(property, value string) {
	property = strings.TrimSpace(property)
	if _, seen := s.values[property]; !seen {
		s.order = append(s.order, property)
	}
	s.values[property] = strings.TrimSpace(value)
}

func (s *declSet) empty() bool { return len(s.order) == 0 }

func (s *declSet) String() string {
	parts := make([]string, len(s.order))
	for i, p := range s.order {
		parts[i] = p + ": " + s.values[p]
	}
	return strings.Join(parts, "; ")
}

func ruleText(selectors []string, decls []*css.Declaration) string {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = "  " + d.StringWithImportant(d.Important)
	}
	return strings.Join(selectors, ", ") + " {\n" + strings.Join(parts, "\n") + "\n}"
}
