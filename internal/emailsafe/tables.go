package emailsafe

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// rewriteTableLayout converts flow and flex containers into nested
// table/tr/td structures, the only layout primitive legacy mail rendering
// engines handle reliably. Flex rows (the exporter's "columns" class, or
// any display:flex container) become one row with a cell per child; other
// block containers become single-cell tables. The original element's
// attributes move onto the cell so inlined styles survive the rewrite.
func rewriteTableLayout(doc *html.Node) {
	body := findFirst(doc, "body")
	if body == nil {
		return
	}
	// Collect before rewriting; the rewrite replaces nodes in place.
	divs := findAll(body, func(n *html.Node) bool { return n.Data == "div" })
	for _, div := range divs {
		if isFlexRow(div) {
			rewriteRow(div)
		} else {
			rewriteBlock(div)
		}
	}
}

func isFlexRow(n *html.Node) bool {
	if hasClass(n, "columns") {
		return true
	}
	style := strings.ReplaceAll(getAttr(n, "style"), " ", "")
	return strings.Contains(style, "display:flex")
}

// rewriteRow turns a flex container into <table><tr> with one <td> per
// child element.
func rewriteRow(div *html.Node) {
	table := newTable()
	tr := newElement("tr", atom.Tr)
	tbody := newElement("tbody", atom.Tbody)
	table.AppendChild(tbody)
	tbody.AppendChild(tr)

	for div.FirstChild != nil {
		c := div.FirstChild
		div.RemoveChild(c)
		if c.Type != html.ElementNode {
			// Whitespace between columns carries no layout meaning.
			continue
		}
		td := newElement("td", atom.Td)
		setAttr(td, "valign", "top")
		moveLayoutAttrs(c, td)
		td.AppendChild(c)
		tr.AppendChild(td)
	}

	moveLayoutAttrs(div, table)
	replaceNode(div, table)
}

// rewriteBlock turns a plain block container into a single-cell table.
func rewriteBlock(div *html.Node) {
	table := newTable()
	tbody := newElement("tbody", atom.Tbody)
	tr := newElement("tr", atom.Tr)
	td := newElement("td", atom.Td)
	table.AppendChild(tbody)
	tbody.AppendChild(tr)
	tr.AppendChild(td)

	reparentChildren(div, td)
	moveLayoutAttrs(div, td)
	replaceNode(div, table)
}

// moveLayoutAttrs transfers id, class and style from the rewritten element
// onto its replacement cell, minus flex declarations that mean nothing in a
// table world.
func moveLayoutAttrs(from, to *html.Node) {
	if id := getAttr(from, "id"); id != "" {
		setAttr(to, "id", id)
		removeAttr(from, "id")
	}
	if class := getAttr(from, "class"); class != "" {
		setAttr(to, "class", class)
		removeAttr(from, "class")
	}
	if style := getAttr(from, "style"); style != "" {
		if cleaned := stripFlexDeclarations(style); cleaned != "" {
			setAttr(to, "style", cleaned)
		}
		removeAttr(from, "style")
	}
	if nodeID := getAttr(from, "data-node-id"); nodeID != "" {
		setAttr(to, "data-node-id", nodeID)
		removeAttr(from, "data-node-id")
	}
}

func stripFlexDeclarations(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		prop, _, _ := strings.Cut(decl, ":")
		switch strings.TrimSpace(prop) {
		case "display", "flex", "flex-direction", "flex-wrap", "justify-content", "align-items":
			continue
		case "":
			continue
		}
		kept = append(kept, strings.TrimSpace(decl))
	}
	return strings.Join(kept, "; ")
}

func newTable() *html.Node {
	table := newElement("table", atom.Table)
	setAttr(table, "role", "presentation")
	setAttr(table, "width", "100%")
	setAttr(table, "cellpadding", "0")
	setAttr(table, "cellspacing", "0")
	setAttr(table, "border", "0")
	return table
}

func newElement(tag string, a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: a}
}

func replaceNode(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}
