package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eljojo/safescript/internal/csp"
	"github.com/eljojo/safescript/internal/html"
	"github.com/eljojo/safescript/internal/script"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy --src URL [--src URL...]",
	Short: "Print a trusted loader for a list of scripts",
	Long: `Print one <script> element that loads the given scripts at runtime.

The loader carries its own CSP hash as its id, so a policy that allows
that hash (hash-based or with 'strict-dynamic') trusts the scripts it
injects. The hash is printed to stderr.

Examples:
  safescript proxy --src https://cdn.example/a.js --src /b.js --async
  safescript proxy --src /widget.js --attr data-site=42 -o proxy.html`,
	Args: cobra.NoArgs,
	RunE: runProxy,
}

var (
	proxySrcs   []string
	proxyAttrs  []string
	proxyAsync  bool
	proxyDefer  bool
	proxyOutput string
)

func init() {
	proxyCmd.Flags().StringArrayVar(&proxySrcs, "src", nil, "Script URL to load (repeatable, in load order)")
	proxyCmd.Flags().StringArrayVar(&proxyAttrs, "attr", nil, "Extra attribute 'name=value' set on every script (repeatable)")
	proxyCmd.Flags().BoolVar(&proxyAsync, "async", false, "Load every script async")
	proxyCmd.Flags().BoolVar(&proxyDefer, "defer", false, "Load every script deferred")
	proxyCmd.Flags().StringVarP(&proxyOutput, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	if len(proxySrcs) == 0 {
		return fmt.Errorf("at least one --src is required")
	}

	extra, err := parseAttrFlags(proxyAttrs)
	if err != nil {
		return err
	}

	nodes := make([]*script.Node, len(proxySrcs))
	for i, src := range proxySrcs {
		n := script.NewScript(script.Attr{Name: "src", Value: script.String(src)})
		if proxyAsync {
			n.Props = n.Props.Set("async", script.Bool(true))
		}
		if proxyDefer {
			n.Props = n.Props.Set("defer", script.Bool(true))
		}
		n.Props = append(n.Props, extra...)
		nodes[i] = n
	}

	p, err := csp.BuildProxy(nodes)
	if err != nil {
		return fmt.Errorf("building proxy: %w", err)
	}
	logger.Debug("built proxy", "scripts", len(nodes), "hash", p.Hash)

	content, err := html.RenderString(cmd.Context(), html.Script(p.Node()))
	if err != nil {
		return fmt.Errorf("rendering proxy: %w", err)
	}

	fmt.Fprintf(os.Stderr, "script-src %s\n", formatSourceHash(p.Hash))
	return writeOutput(proxyOutput, content+"\n")
}

// parseAttrFlags parses --attr flags in format "name=value" or "name" (a
// true boolean).
func parseAttrFlags(flags []string) (script.Props, error) {
	var props script.Props
	for _, f := range flags {
		name, value, hasValue := strings.Cut(f, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --attr %q: name is required", f)
		}
		if !hasValue {
			props = append(props, script.Attr{Name: name, Value: script.Bool(true)})
			continue
		}
		props = append(props, script.Attr{Name: name, Value: script.String(value)})
	}
	return props, nil
}

func formatSourceHash(h string) string {
	return "'" + h + "'"
}
