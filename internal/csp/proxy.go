// Package csp computes integrity values for script nodes and builds
// trusted loader proxies for scripts whose own integrity is unknown at
// build time.
package csp

import (
	"errors"
	"strings"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/loader"
	"github.com/eljojo/safescript/internal/script"
)

// ProxyMarker stands in for the proxy's own id while its code is drafted.
const ProxyMarker = "self-reference-proxy"

// ErrMarkerCollision is returned when a proxied script's attributes contain
// ProxyMarker, which would make the substitution rewrite unrelated text.
var ErrMarkerCollision = errors.New("script attributes contain the reserved proxy marker " + ProxyMarker)

// Proxy is a drafted trusted loader.
type Proxy struct {
	// Hash is the integrity of Draft and the id of the proxy element.
	Hash string
	// Draft is the loader code with ProxyMarker as lookup id.
	Draft string
	// Code is Draft with every ProxyMarker replaced by Hash.
	Code  string
	Async bool
	Defer bool
}

// BuildProxy drafts a loader for nodes against ProxyMarker, hashes the
// draft, and substitutes the hash for the marker. The hash is taken over
// the draft, never over the substituted code.
func BuildProxy(nodes []*script.Node) (Proxy, error) {
	batch := script.BatchOf(nodes)

	draft := loader.Generate(batch, ProxyMarker)
	if strings.Count(draft, ProxyMarker) > 1 {
		return Proxy{}, ErrMarkerCollision
	}

	hash := crypto.Integrity(draft)
	return Proxy{
		Hash:  hash,
		Draft: draft,
		Code:  strings.ReplaceAll(draft, ProxyMarker, hash),
		Async: every(batch, "async"),
		Defer: every(batch, "defer"),
	}, nil
}

// Node returns the proxy as a script element. async and defer are only set
// when true, so the rendered element omits them rather than stating false.
func (p Proxy) Node() *script.Node {
	n := script.NewInline(p.Code, script.Attr{Name: "id", Value: script.String(p.Hash)})
	if p.Async {
		n.Props = n.Props.Set("async", script.Bool(true))
	}
	if p.Defer {
		n.Props = n.Props.Set("defer", script.Bool(true))
	}
	return n
}

// TrustedProxy returns one script element that loads every node in order
// and whose id is the integrity of its drafted code.
func TrustedProxy(nodes []*script.Node) (*script.Node, error) {
	p, err := BuildProxy(nodes)
	if err != nil {
		return nil, err
	}
	return p.Node(), nil
}

// ProxyHash returns the integrity a policy must allow for the proxy of nodes.
func ProxyHash(nodes []*script.Node) (string, error) {
	p, err := BuildProxy(nodes)
	if err != nil {
		return "", err
	}
	return p.Hash, nil
}

// VerifyProxy reports whether code is a proxy identified by id: putting
// ProxyMarker back in place of id must give a draft that hashes to id.
func VerifyProxy(id, code string) bool {
	if id == "" || !strings.Contains(code, id) {
		return false
	}
	return crypto.VerifyIntegrity(strings.ReplaceAll(code, id, ProxyMarker), id)
}

// every reports whether the first attribute named name is truthy in every list.
func every(batch script.Batch, name string) bool {
	for _, attrs := range batch {
		if !attrs.Get(name).Truthy() {
			return false
		}
	}
	return true
}
