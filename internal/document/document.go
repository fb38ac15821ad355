// Package document reads the script elements of an HTML document as script
// nodes and writes transformed nodes back into the tree.
package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/eljojo/safescript/internal/script"
)

// Script pairs a <script> element of the parsed tree with its node form.
type Script struct {
	Elem *html.Node
	Node *script.Node
}

// Document is a parsed HTML document.
type Document struct {
	Root    *html.Node
	Scripts []*Script
}

// Parse reads an HTML document and collects its script elements in
// document order.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	d := &Document{Root: root}
	d.collect()
	return d, nil
}

func (d *Document) collect() {
	d.Scripts = nil
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			d.Scripts = append(d.Scripts, &Script{Elem: n, Node: FromElement(n)})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.Root)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Root)
}

// FromElement converts a <script> element into a script node. Attribute
// order is kept, boolean attributes become true booleans and nomodule is
// spelled as its DOM property. crossorigin keeps its HTML spelling. A
// single text child becomes the node's inline code.
func FromElement(el *html.Node) *script.Node {
	n := &script.Node{Kind: script.KindOther, Tag: el.Data}
	if el.DataAtom == atom.Script {
		n.Kind = script.KindScript
	}

	for _, a := range el.Attr {
		if a.Namespace != "" {
			continue
		}
		name := a.Key
		if name == "nomodule" {
			name = "noModule"
		}
		if script.IsBooleanAttribute(a.Key) {
			n.Props = append(n.Props, script.Attr{Name: name, Value: script.Bool(true)})
			continue
		}
		n.Props = append(n.Props, script.Attr{Name: name, Value: script.String(a.Val)})
	}

	if c := el.FirstChild; c != nil && c.NextSibling == nil && c.Type == html.TextNode {
		n.Children = []script.Child{script.Text(c.Data)}
	}
	return n
}

// Apply writes a script node's props and body onto el, replacing its
// attributes and children.
func Apply(el *html.Node, n *script.Node) {
	el.Attr = el.Attr[:0]
	for _, a := range n.Props {
		name := script.AttributeName(a.Name)
		switch a.Value.Kind {
		case script.ValueBool:
			if a.Value.Bool {
				el.Attr = append(el.Attr, html.Attribute{Key: name})
			}
		case script.ValueString, script.ValueNumber:
			el.Attr = append(el.Attr, html.Attribute{Key: name, Val: a.Value.Text()})
		}
	}

	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		c = next
	}

	body := n.InnerHTML
	if body == "" {
		if code, ok := n.InlineCode(); ok {
			body = code
		}
	}
	if body != "" {
		el.AppendChild(&html.Node{Type: html.TextNode, Data: body})
	}
}

// NewElement returns a detached <script> element built from n.
func NewElement(n *script.Node) *html.Node {
	el := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
	Apply(el, n)
	return el
}

// IsExecutable reports whether the script's type makes it executable
// JavaScript. Data blocks such as JSON are not subject to script-src.
func IsExecutable(n *script.Node) bool {
	v, ok := n.Props.Lookup("type")
	if !ok {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(v.Text())) {
	case "", "module", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript":
		return true
	}
	return false
}
