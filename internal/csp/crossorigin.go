package csp

import "github.com/eljojo/safescript/internal/script"

// crossOriginAliases are the prop names a caller may have used for the
// crossorigin attribute, in priority order.
var crossOriginAliases = [...]string{"crossOrigin", "data-crossorigin", "crossorigin"}

// PatchCrossOrigin settles the crossOrigin prop of an external script with
// integrity. The first truthy alias wins and the two placeholder aliases
// are always removed. Scripts without both integrity and src are returned
// unchanged.
func PatchCrossOrigin(n *script.Node) *script.Node {
	if !script.IsScript(n) || !n.Props.Get("integrity").Truthy() || !n.Props.Get("src").Truthy() {
		return n
	}

	var resolved script.Value
	for _, name := range crossOriginAliases {
		if v := n.Props.Get(name); v.Truthy() {
			resolved = v
			break
		}
	}

	out := n.Clone()
	if resolved.Truthy() {
		out.Props = out.Props.Set("crossOrigin", resolved)
	} else {
		out.Props = out.Props.Delete("crossOrigin")
	}
	out.Props = out.Props.Delete("data-crossorigin")
	out.Props = out.Props.Delete("crossorigin")
	return out
}
