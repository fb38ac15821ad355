package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eljojo/safescript/internal/csp"
	"github.com/eljojo/safescript/internal/html"
	"github.com/eljojo/safescript/internal/project"
	"github.com/eljojo/safescript/internal/script"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Hash the project's scripts and render their tags",
	Long: `Build reads safescript.yml and renders every script tag the page needs.

This command:
  1. Hashes inline scripts and sets their integrity
  2. Hashes local copies of external scripts
  3. Settles crossorigin on external scripts with integrity
  4. Folds proxy scripts into one trusted loader whose id is its own hash
  5. Writes output/scripts.html (and output/page.html with --page)
  6. Records the hash sources in safescript.yml

Run this command inside a project directory (created with 'safescript init').`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().Bool("page", false, "Also write a standalone preview page")
	buildCmd.Flags().String("title", "", "Preview page title (defaults to the project name)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	page, _ := cmd.Flags().GetBool("page")
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = p.Name
	}

	res, err := buildProject(cmd.Context(), p, page, title)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("script-src sources:")
	for _, s := range res.Sources {
		fmt.Printf("  %s\n", s)
	}
	return nil
}

// buildProject renders the project's scripts, writes the output files and
// records the result in the project file. Both runBuild and tests share it.
func buildProject(ctx context.Context, p *project.Project, page bool, title string) (*project.Built, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	scripts, err := p.Scripts()
	if err != nil {
		return nil, fmt.Errorf("loading scripts: %w", err)
	}

	for _, n := range scripts.Direct {
		if code, ok := n.InlineCode(); ok {
			warnIfDenormalized(scriptName(n), code)
		}
	}

	nodes, hashes, proxy, err := prepareScripts(scripts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Hashed %d script%s\n", len(hashes), plural(len(hashes)))

	built := &project.Built{
		At:      time.Now().UTC(),
		Files:   scripts.Files,
		Sources: html.HashSources(nodes),
	}
	if proxy != nil {
		built.ProxyHash = proxy.Hash
		fmt.Printf("Proxied %d script%s through %s\n", len(scripts.Proxied), plural(len(scripts.Proxied)), truncateHash(proxy.Hash))
		logger.Debug("proxy draft", "hash", proxy.Hash, "bytes", len(proxy.Draft))
	}

	fragment, err := html.RenderString(ctx, html.Scripts(nodes))
	if err != nil {
		return nil, fmt.Errorf("rendering scripts: %w", err)
	}

	if err := os.MkdirAll(p.OutputPath(), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(p.FragmentPath(), []byte(fragment), 0644); err != nil {
		return nil, fmt.Errorf("writing fragment: %w", err)
	}
	rel, _ := filepath.Rel(p.Path, p.FragmentPath())
	fmt.Printf("  %s %s (%s)\n", green("✓"), rel, formatSize(int64(len(fragment))))

	if page {
		content, err := html.GeneratePageHTML(ctx, title, version, nodes)
		if err != nil {
			return nil, fmt.Errorf("rendering page: %w", err)
		}
		if err := os.WriteFile(p.PagePath(), []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("writing page: %w", err)
		}
		rel, _ := filepath.Rel(p.Path, p.PagePath())
		fmt.Printf("  %s %s (%s)\n", green("✓"), rel, formatSize(int64(len(content))))
	}

	p.Built = built
	if err := p.Save(); err != nil {
		return nil, fmt.Errorf("saving project: %w", err)
	}

	return built, nil
}

// prepareScripts hashes the direct scripts and appends the proxy for the
// proxied ones. proxy is nil when nothing is proxied.
func prepareScripts(scripts *project.Scripts) (nodes []*script.Node, hashes []string, proxy *csp.Proxy, err error) {
	nodes, hashes = csp.Prepare(scripts.Direct)
	if len(scripts.Proxied) == 0 {
		return nodes, hashes, nil, nil
	}
	p, err := csp.BuildProxy(scripts.Proxied)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building proxy: %w", err)
	}
	return append(nodes, p.Node()), hashes, &p, nil
}

func scriptName(n *script.Node) string {
	if n.Key != "" {
		return n.Key
	}
	if v := n.Props.Get("src"); v.Truthy() {
		return v.Text()
	}
	return "inline"
}
