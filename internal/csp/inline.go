package csp

import (
	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/script"
)

// WithInlineHash converts an inline script (a script whose single child is
// a string) into an equivalent element carrying the integrity of its code.
// src is dropped, the code moves to InnerHTML so the renderer does not
// escape it, and the key and remaining props are kept. Any other node is
// returned unchanged.
func WithInlineHash(n *script.Node) *script.Node {
	if !script.IsScript(n) {
		return n
	}
	code, ok := n.InlineCode()
	if !ok {
		return n
	}

	out := n.Clone()
	out.Props = out.Props.Delete("src")
	out.Props = out.Props.Set("integrity", script.String(crypto.Integrity(code)))
	out.Children = nil
	out.InnerHTML = code
	return out
}
