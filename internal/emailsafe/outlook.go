package emailsafe

import (
	"golang.org/x/net/html"
)

// Conditional markup recognized only by Outlook's Word-based renderer;
// every other client sees HTML comments and ignores them.
const (
	msoNamespaceV = "urn:schemas-microsoft-com:vml"
	msoNamespaceO = "urn:schemas-microsoft-com:office:office"

	msoHeadStyle = `[if mso]>
<style>
table { border-collapse: collapse; }
td, p, a { font-family: Arial, Helvetica, sans-serif; }
</style>
<![endif]`

	msoBodyOpen  = `[if mso]><table role="presentation" width="600" align="center" cellpadding="0" cellspacing="0" border="0"><tr><td><![endif]`
	msoBodyClose = `[if mso]></td></tr></table><![endif]`
)

// addOutlookFixes injects the conditional markup Outlook needs: VML/Office
// XML namespaces on the root element, a conditional style reset in the
// head, and a fixed-width wrapper table around the body content so Word's
// engine honors the 600px canvas.
func addOutlookFixes(doc *html.Node) {
	if root := findFirst(doc, "html"); root != nil {
		if getAttr(root, "xmlns:v") == "" {
			setAttr(root, "xmlns:v", msoNamespaceV)
		}
		if getAttr(root, "xmlns:o") == "" {
			setAttr(root, "xmlns:o", msoNamespaceO)
		}
	}

	if head := findFirst(doc, "head"); head != nil {
		head.AppendChild(&html.Node{Type: html.CommentNode, Data: msoHeadStyle})
	}

	body := findFirst(doc, "body")
	if body == nil {
		return
	}
	open := &html.Node{Type: html.CommentNode, Data: msoBodyOpen}
	if body.FirstChild != nil {
		body.InsertBefore(open, body.FirstChild)
	} else {
		body.AppendChild(open)
	}
	body.AppendChild(&html.Node{Type: html.CommentNode, Data: msoBodyClose})
}
