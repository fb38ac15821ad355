package html

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eljojo/safescript/internal/script"
)

// ErrNotScript is returned when Script is given a node that is not a script element.
var ErrNotScript = errors.New("not a script element")

// ErrUnsafeBody is returned when a script body would terminate its own element.
var ErrUnsafeBody = errors.New("script body contains a closing script tag")

// Script renders a script node as a <script> element. Scalar props become
// attributes (true booleans as bare attributes, false ones omitted) and
// everything else is skipped. InnerHTML, or else the text children, is
// written without escaping.
func Script(n *script.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if !script.IsScript(n) {
			return ErrNotScript
		}

		body := scriptBody(n)
		if strings.Contains(strings.ToLower(body), "</script") {
			return ErrUnsafeBody
		}

		var b strings.Builder
		b.WriteString("<script")
		for _, a := range n.Props {
			writeAttr(&b, a)
		}
		b.WriteString(">")
		b.WriteString(body)
		b.WriteString("</script>")

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Scripts renders nodes one per line, in order.
func Scripts(nodes []*script.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, n := range nodes {
			if err := Script(n).Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenderString renders c into a string.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func scriptBody(n *script.Node) string {
	if n.InnerHTML != "" {
		return n.InnerHTML
	}
	var b strings.Builder
	for _, c := range n.Children {
		if c.IsText() {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func writeAttr(b *strings.Builder, a script.Attr) {
	name := script.AttributeName(a.Name)
	if !validAttrName(name) {
		return
	}
	switch a.Value.Kind {
	case script.ValueBool:
		if a.Value.Bool {
			b.WriteString(" " + name)
		}
	case script.ValueString, script.ValueNumber:
		b.WriteString(" " + name + `="` + templ.EscapeString(a.Value.Text()) + `"`)
	}
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.':
		default:
			return false
		}
	}
	return true
}
