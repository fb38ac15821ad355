package csp

import "github.com/eljojo/safescript/internal/script"

// Prepare runs WithInlineHash and PatchCrossOrigin over nodes and returns
// the transformed nodes together with the integrity values they carry, in
// order. The input slice is not modified.
func Prepare(nodes []*script.Node) ([]*script.Node, []string) {
	out := make([]*script.Node, len(nodes))
	var hashes []string
	for i, n := range nodes {
		n = PatchCrossOrigin(WithInlineHash(n))
		out[i] = n
		if !script.IsScript(n) {
			continue
		}
		if v := n.Props.Get("integrity"); v.Kind == script.ValueString && v.Str != "" {
			hashes = append(hashes, v.Str)
		}
	}
	return out, hashes
}
