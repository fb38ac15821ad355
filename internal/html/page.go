package html

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/eljojo/safescript/internal/script"
)

// GeneratePageHTML creates a standalone preview page that loads nodes.
// The hash sources the page needs are listed in a comment in the head.
func GeneratePageHTML(ctx context.Context, title, version string, nodes []*script.Node) (string, error) {
	scripts, err := RenderString(ctx, Scripts(nodes))
	if err != nil {
		return "", err
	}

	// A single pass, so placeholders inside script bodies or the title are
	// left alone.
	r := strings.NewReplacer(
		"{{TITLE}}", templ.EscapeString(title),
		"{{VERSION}}", templ.EscapeString(version),
		"{{SCRIPT_SOURCES}}", strings.Join(HashSources(nodes), " "),
		"{{SCRIPTS}}", strings.TrimSuffix(scripts, "\n"),
	)
	return r.Replace(pageHTMLTemplate), nil
}
