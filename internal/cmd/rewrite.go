package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eljojo/safescript/internal/document"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file.html>",
	Short: "Hash the inline scripts of an HTML document",
	Long: `Rewrite parses an HTML document and rewrites its script elements:

  - Inline scripts get an integrity attribute with their hash
  - External scripts with integrity get a single crossorigin attribute
  - With --proxy, external scripts without integrity are replaced by one
    trusted loader placed where the first of them was

The hash sources the document needs are printed to stderr.

Examples:
  safescript rewrite index.html > index.csp.html
  safescript rewrite index.html --proxy -o index.csp.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

var (
	rewriteOutput string
	rewriteProxy  bool
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteOutput, "output", "o", "", "Output file path (default: stdout)")
	rewriteCmd.Flags().BoolVar(&rewriteProxy, "proxy", false, "Load external scripts without integrity through a trusted proxy")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	doc, err := document.Parse(f)
	if err != nil {
		return err
	}
	logger.Debug("parsed document", "file", args[0], "scripts", len(doc.Scripts))

	for _, s := range doc.Scripts {
		if code, ok := s.Node.InlineCode(); ok && document.IsExecutable(s.Node) {
			warnIfDenormalized(scriptName(s.Node), code)
		}
	}

	res, err := doc.Rewrite(document.RewriteOptions{Proxy: rewriteProxy})
	if err != nil {
		return err
	}

	var out strings.Builder
	if err := doc.Render(&out); err != nil {
		return fmt.Errorf("rendering document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Hashed %d, patched %d, proxied %d script%s\n", res.Hashed, res.Patched, res.Proxied, plural(res.Proxied))
	if len(res.Sources) > 0 {
		fmt.Fprintf(os.Stderr, "script-src %s\n", strings.Join(res.Sources, " "))
	}
	return writeOutput(rewriteOutput, out.String())
}
