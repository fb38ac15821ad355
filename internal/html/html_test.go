package html

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/csp"
	"github.com/eljojo/safescript/internal/script"
)

func attr(name string, v script.Value) script.Attr {
	return script.Attr{Name: name, Value: v}
}

func render(t *testing.T, n *script.Node) string {
	t.Helper()
	got, err := RenderString(context.Background(), Script(n))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return got
}

func TestScriptAttributes(t *testing.T) {
	n := script.NewScript(
		attr("src", script.String("/a.js?x=1&y=\"2\"")),
		attr("async", script.Bool(true)),
		attr("defer", script.Bool(false)),
		attr("crossOrigin", script.String("anonymous")),
		attr("noModule", script.Bool(true)),
		attr("data-n", script.Number(3)),
		attr("onLoad", script.Func("f")),
		attr("nonce", script.Null()),
		attr(`bad"name`, script.String("x")),
	)

	got := render(t, n)
	want := `<script src="/a.js?x=1&amp;y=&#34;2&#34;" async crossorigin="anonymous" nomodule data-n="3"></script>`
	if got != want {
		t.Errorf("Script() =\n%s\nwant:\n%s", got, want)
	}
}

func TestScriptInnerHTMLIsRaw(t *testing.T) {
	n := csp.WithInlineHash(script.NewInline("if (a < b && c) { go(); }"))
	got := render(t, n)
	want := `<script integrity="` + crypto.Integrity("if (a < b && c) { go(); }") + `">if (a < b && c) { go(); }</script>`
	if got != want {
		t.Errorf("Script() =\n%s\nwant:\n%s", got, want)
	}
}

func TestScriptRejectsClosingTag(t *testing.T) {
	n := script.NewInline(`document.write("</SCRIPT>")`)
	_, err := RenderString(context.Background(), Script(n))
	if !errors.Is(err, ErrUnsafeBody) {
		t.Errorf("err = %v, want ErrUnsafeBody", err)
	}
}

func TestScriptRejectsNonScript(t *testing.T) {
	_, err := RenderString(context.Background(), Script(&script.Node{Tag: "div"}))
	if !errors.Is(err, ErrNotScript) {
		t.Errorf("err = %v, want ErrNotScript", err)
	}
}

func TestScriptsRendersProxy(t *testing.T) {
	proxy, err := csp.TrustedProxy([]*script.Node{
		script.NewScript(attr("src", script.String("/a.js")), attr("async", script.Bool(true))),
	})
	if err != nil {
		t.Fatalf("TrustedProxy: %v", err)
	}

	got, err := RenderString(context.Background(), Scripts([]*script.Node{proxy}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	id := proxy.Props.Get("id").Str
	if !strings.HasPrefix(got, `<script id="`+id+`" async>(function () {`) {
		t.Errorf("unexpected proxy markup:\n%s", got)
	}
	if !strings.Contains(got, "s0.src='/a.js';") {
		t.Errorf("proxy body should not be escaped:\n%s", got)
	}
}

func TestHashSources(t *testing.T) {
	inline := csp.WithInlineHash(script.NewInline("a()"))
	dup := csp.WithInlineHash(script.NewInline("a()"))
	proxy, _ := csp.TrustedProxy([]*script.Node{script.NewScript(attr("src", script.String("/x.js")))})
	plain := script.NewScript(attr("id", script.String("not-a-hash")), attr("src", script.String("/y.js")))

	got := HashSources([]*script.Node{inline, dup, proxy, plain})
	want := []string{
		"'" + crypto.Integrity("a()") + "'",
		"'" + proxy.Props.Get("id").Str + "'",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("HashSources() = %v, want %v", got, want)
	}
}

func TestGeneratePageHTML(t *testing.T) {
	nodes := []*script.Node{csp.WithInlineHash(script.NewInline("start('{{TITLE}}')"))}
	page, err := GeneratePageHTML(context.Background(), "Demo <1>", "v1.0", nodes)
	if err != nil {
		t.Fatalf("GeneratePageHTML: %v", err)
	}

	if !strings.Contains(page, "<title>Demo &lt;1&gt;</title>") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(page, "start('{{TITLE}}')") {
		t.Error("placeholders inside scripts should be left alone")
	}
	if !strings.Contains(page, "script-src '"+crypto.Integrity("start('{{TITLE}}')")+"'") {
		t.Error("page should list the inline script hash")
	}
	if strings.Contains(page, "{{SCRIPTS}}") || strings.Contains(page, "{{VERSION}}") {
		t.Error("all placeholders should be replaced")
	}
}
