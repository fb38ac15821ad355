package csp

import (
	"errors"
	"strings"
	"testing"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/loader"
	"github.com/eljojo/safescript/internal/script"
)

func attr(name string, v script.Value) script.Attr {
	return script.Attr{Name: name, Value: v}
}

func TestTrustedProxyIDIsDraftHash(t *testing.T) {
	n1 := script.NewScript(attr("src", script.String("/a.js")), attr("async", script.Bool(true)))
	n2 := script.NewScript(attr("src", script.String("/b.js")), attr("data-foo", script.String("bar")))

	proxy, err := TrustedProxy([]*script.Node{n1, n2})
	if err != nil {
		t.Fatalf("TrustedProxy: %v", err)
	}

	draft := loader.Generate(script.BatchOf([]*script.Node{n1, n2}), ProxyMarker)
	wantID := crypto.Integrity(draft)
	if got := proxy.Props.Get("id").Str; got != wantID {
		t.Errorf("id = %q, want hash of draft %q", got, wantID)
	}

	code, ok := proxy.InlineCode()
	if !ok {
		t.Fatal("proxy should carry its code as a single string child")
	}
	if crypto.Integrity(code) == wantID {
		t.Error("id should not be the hash of the substituted code")
	}
	if strings.Contains(code, ProxyMarker) {
		t.Errorf("marker should be substituted, got:\n%s", code)
	}
	if !strings.Contains(code, "document.getElementById('"+wantID+"')") {
		t.Errorf("code should look itself up by id, got:\n%s", code)
	}
	if code != strings.ReplaceAll(draft, ProxyMarker, wantID) {
		t.Error("code should be the draft with the marker replaced")
	}
}

func TestTrustedProxyAsyncDefer(t *testing.T) {
	src := func(s string) script.Attr { return attr("src", script.String(s)) }
	tests := []struct {
		name      string
		nodes     []*script.Node
		wantAsync bool
		wantDefer bool
	}{
		{
			name: "all async",
			nodes: []*script.Node{
				script.NewScript(src("/a.js"), attr("async", script.Bool(true))),
				script.NewScript(src("/b.js"), attr("async", script.Bool(true))),
			},
			wantAsync: true,
		},
		{
			name: "one missing async",
			nodes: []*script.Node{
				script.NewScript(src("/a.js"), attr("async", script.Bool(true))),
				script.NewScript(src("/b.js")),
			},
		},
		{
			name: "one false async",
			nodes: []*script.Node{
				script.NewScript(src("/a.js"), attr("async", script.Bool(true))),
				script.NewScript(src("/b.js"), attr("async", script.Bool(false))),
			},
		},
		{
			name: "all defer, truthy string",
			nodes: []*script.Node{
				script.NewScript(src("/a.js"), attr("defer", script.String("defer"))),
				script.NewScript(src("/b.js"), attr("defer", script.Bool(true))),
			},
			wantDefer: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proxy, err := TrustedProxy(tt.nodes)
			if err != nil {
				t.Fatalf("TrustedProxy: %v", err)
			}
			if got := proxy.Props.Has("async"); got != tt.wantAsync {
				t.Errorf("async present = %v, want %v", got, tt.wantAsync)
			}
			if tt.wantAsync && !proxy.Props.Get("async").Truthy() {
				t.Error("async should be truthy")
			}
			if got := proxy.Props.Has("defer"); got != tt.wantDefer {
				t.Errorf("defer present = %v, want %v", got, tt.wantDefer)
			}
		})
	}
}

func TestTrustedProxyMarkerCollision(t *testing.T) {
	n := script.NewScript(attr("src", script.String("/a.js?v="+ProxyMarker)))
	if _, err := TrustedProxy([]*script.Node{n}); !errors.Is(err, ErrMarkerCollision) {
		t.Errorf("err = %v, want ErrMarkerCollision", err)
	}
}

func TestTrustedProxyEmpty(t *testing.T) {
	p, err := BuildProxy(nil)
	if err != nil {
		t.Fatalf("BuildProxy: %v", err)
	}
	if p.Code != "" {
		t.Errorf("code = %q, want empty", p.Code)
	}
	if p.Hash != crypto.Integrity("") {
		t.Errorf("hash = %q, want hash of empty string", p.Hash)
	}
}

func TestTrustedProxySkipsOpaqueProps(t *testing.T) {
	n := script.NewScript(attr("src", script.String("/a.js")), attr("onLoad", script.Func("f")))
	p, err := BuildProxy([]*script.Node{n})
	if err != nil {
		t.Fatalf("BuildProxy: %v", err)
	}
	if strings.Contains(p.Code, "onLoad") {
		t.Errorf("callbacks should not reach generated code:\n%s", p.Code)
	}
}

func TestProxyHashMatchesNodeID(t *testing.T) {
	nodes := []*script.Node{script.NewScript(attr("src", script.String("/a.js")))}
	h, err := ProxyHash(nodes)
	if err != nil {
		t.Fatalf("ProxyHash: %v", err)
	}
	n, _ := TrustedProxy(nodes)
	if n.Props.Get("id").Str != h {
		t.Errorf("ProxyHash = %q, node id = %q", h, n.Props.Get("id").Str)
	}
}

func TestWithInlineHash(t *testing.T) {
	n := script.NewInline("console.log(1)",
		attr("src", script.String("/ignored.js")),
		attr("type", script.String("module")),
	)
	n.Key = "boot"

	got := WithInlineHash(n)

	if v := got.Props.Get("integrity").Str; v != crypto.Integrity("console.log(1)") {
		t.Errorf("integrity = %q", v)
	}
	if got.Props.Has("src") {
		t.Error("src should be removed")
	}
	if got.Props.Get("type").Str != "module" {
		t.Error("other props should be kept")
	}
	if got.Key != "boot" {
		t.Errorf("key = %q, want boot", got.Key)
	}
	if got.InnerHTML != "console.log(1)" || len(got.Children) != 0 {
		t.Errorf("code should move to InnerHTML, got %q / %v", got.InnerHTML, got.Children)
	}

	// Input is untouched
	if !n.Props.Has("src") || len(n.Children) != 1 {
		t.Error("input node should not be modified")
	}
}

func TestWithInlineHashReplacesExistingIntegrity(t *testing.T) {
	n := script.NewInline("a()", attr("integrity", script.String("sha256-stale")), attr("id", script.String("x")))
	got := WithInlineHash(n)
	if got.Props[0].Name != "integrity" || got.Props[0].Value.Str != crypto.Integrity("a()") {
		t.Errorf("integrity should be replaced in place, got %v", got.Props)
	}
}

func TestWithInlineHashPassThrough(t *testing.T) {
	withElement := script.NewScript()
	withElement.Children = []script.Child{script.Element(&script.Node{Tag: "span"})}

	div := &script.Node{Kind: script.KindOther, Tag: "div", Children: []script.Child{script.Text("x")}}

	for name, n := range map[string]*script.Node{
		"element child": withElement,
		"no children":   script.NewScript(attr("src", script.String("/a.js"))),
		"not a script":  div,
	} {
		if got := WithInlineHash(n); got != n {
			t.Errorf("%s: expected input returned unchanged", name)
		}
	}
}

func TestPatchCrossOrigin(t *testing.T) {
	integrity := attr("integrity", script.String("sha256-abc"))
	src := attr("src", script.String("https://cdn.example/a.js"))

	tests := []struct {
		name  string
		props []script.Attr
		want  string // "" means crossOrigin absent
	}{
		{"data alias only", []script.Attr{integrity, src, attr("data-crossorigin", script.String("anonymous"))}, "anonymous"},
		{"lowercase alias only", []script.Attr{integrity, src, attr("crossorigin", script.String("use-credentials"))}, "use-credentials"},
		{"crossOrigin wins", []script.Attr{integrity, src, attr("crossorigin", script.String("use-credentials")), attr("crossOrigin", script.String("anonymous"))}, "anonymous"},
		{"empty crossOrigin falls through", []script.Attr{integrity, src, attr("crossOrigin", script.String("")), attr("data-crossorigin", script.String("anonymous"))}, "anonymous"},
		{"none set", []script.Attr{integrity, src}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PatchCrossOrigin(script.NewScript(tt.props...))
			if got.Props.Has("data-crossorigin") || got.Props.Has("crossorigin") {
				t.Errorf("aliases should be removed, got %v", got.Props)
			}
			v, ok := got.Props.Lookup("crossOrigin")
			if tt.want == "" {
				if ok {
					t.Errorf("crossOrigin = %v, want absent", v)
				}
				return
			}
			if v.Str != tt.want {
				t.Errorf("crossOrigin = %q, want %q", v.Str, tt.want)
			}
		})
	}
}

func TestPatchCrossOriginPassThrough(t *testing.T) {
	noSrc := script.NewScript(attr("integrity", script.String("sha256-abc")), attr("data-crossorigin", script.String("anonymous")))
	if got := PatchCrossOrigin(noSrc); got != noSrc {
		t.Error("script without src should be returned unchanged")
	}

	noIntegrity := script.NewScript(attr("src", script.String("/a.js")), attr("crossorigin", script.String("anonymous")))
	if got := PatchCrossOrigin(noIntegrity); got != noIntegrity {
		t.Error("script without integrity should be returned unchanged")
	}
}

func TestPrepare(t *testing.T) {
	external := script.NewScript(
		attr("src", script.String("https://cdn.example/a.js")),
		attr("integrity", script.String("sha256-ext")),
		attr("data-crossorigin", script.String("anonymous")),
	)
	inline := script.NewInline("boot()")
	div := &script.Node{Kind: script.KindOther, Tag: "div"}

	out, hashes := Prepare([]*script.Node{external, inline, div})

	if len(out) != 3 || out[2] != div {
		t.Fatalf("Prepare() = %v", out)
	}
	if out[0].Props.Get("crossOrigin").Str != "anonymous" {
		t.Error("external script should be patched")
	}
	if out[1].InnerHTML != "boot()" {
		t.Error("inline script should be hashed")
	}
	want := []string{"sha256-ext", crypto.Integrity("boot()")}
	if strings.Join(hashes, " ") != strings.Join(want, " ") {
		t.Errorf("hashes = %v, want %v", hashes, want)
	}
}

func TestVerifyProxy(t *testing.T) {
	p, err := BuildProxy([]*script.Node{script.NewScript(attr("src", script.String("/a.js")))})
	if err != nil {
		t.Fatalf("BuildProxy: %v", err)
	}
	if !VerifyProxy(p.Hash, p.Code) {
		t.Error("built proxy should verify")
	}
	if VerifyProxy(p.Hash, strings.Replace(p.Code, "/a.js", "/evil.js", 1)) {
		t.Error("tampered proxy should not verify")
	}
	if VerifyProxy(crypto.Integrity("x"), p.Code) {
		t.Error("wrong id should not verify")
	}
	if VerifyProxy("", p.Code) {
		t.Error("empty id should not verify")
	}
}
