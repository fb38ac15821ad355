package html

import (
	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/script"
)

// HashSources returns the quoted CSP hash sources the rendered nodes need,
// in document order and without duplicates. A node contributes its
// integrity, or its id when the id is itself an integrity value (a trusted
// proxy identifies itself that way).
func HashSources(nodes []*script.Node) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(h string) {
		if h == "" || seen[h] {
			return
		}
		seen[h] = true
		out = append(out, crypto.Source(h))
	}

	for _, n := range nodes {
		if !script.IsScript(n) {
			continue
		}
		if v := n.Props.Get("integrity"); v.Kind == script.ValueString {
			add(v.Str)
		}
		if v := n.Props.Get("id"); v.Kind == script.ValueString && crypto.IsIntegrity(v.Str) {
			add(v.Str)
		}
	}
	return out
}
