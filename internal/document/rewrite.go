package document

import (
	"fmt"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/csp"
	"github.com/eljojo/safescript/internal/script"
)

// RewriteOptions controls Rewrite.
type RewriteOptions struct {
	// Proxy replaces every external script without integrity by a single
	// trusted proxy placed where the first of them was.
	Proxy bool
}

// RewriteResult summarizes a rewrite.
type RewriteResult struct {
	Hashed  int
	Patched int
	Proxied int
	// ProxyHash is the id of the inserted proxy, if any.
	ProxyHash string
	// Sources are the CSP hash sources the rewritten document needs: the
	// hashed and integrity-carrying scripts in document order, then the proxy.
	Sources []string
}

// Rewrite hashes every executable inline script in place, settles the
// crossorigin attribute of external scripts with integrity, and optionally
// folds external scripts without integrity into one trusted proxy.
func (d *Document) Rewrite(opts RewriteOptions) (RewriteResult, error) {
	var res RewriteResult
	var external []*Script
	seen := make(map[string]bool)
	addSource := func(h string) {
		if !seen[h] {
			seen[h] = true
			res.Sources = append(res.Sources, crypto.Source(h))
		}
	}

	for _, s := range d.Scripts {
		if !IsExecutable(s.Node) {
			continue
		}
		src := s.Node.Props.Get("src")
		integrity := s.Node.Props.Get("integrity")

		switch {
		case !src.Truthy():
			hashed := csp.WithInlineHash(s.Node)
			if hashed == s.Node {
				continue
			}
			Apply(s.Elem, hashed)
			s.Node = hashed
			res.Hashed++
			addSource(hashed.Props.Get("integrity").Str)

		case integrity.Truthy():
			patched := csp.PatchCrossOrigin(s.Node)
			if patched != s.Node {
				Apply(s.Elem, patched)
				s.Node = patched
				res.Patched++
			}
			addSource(integrity.Text())

		case opts.Proxy:
			external = append(external, s)
		}
	}

	if len(external) == 0 {
		return res, nil
	}

	nodes := make([]*script.Node, len(external))
	for i, s := range external {
		nodes[i] = s.Node
	}
	proxy, err := csp.BuildProxy(nodes)
	if err != nil {
		return res, fmt.Errorf("building proxy: %w", err)
	}

	first := external[0].Elem
	first.Parent.InsertBefore(NewElement(proxy.Node()), first)
	for _, s := range external {
		s.Elem.Parent.RemoveChild(s.Elem)
	}

	res.Proxied = len(external)
	res.ProxyHash = proxy.Hash
	addSource(proxy.Hash)
	d.collect()
	return res, nil
}
