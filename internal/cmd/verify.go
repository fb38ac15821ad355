package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/csp"
	"github.com/eljojo/safescript/internal/document"
	"github.com/eljojo/safescript/internal/html"
	"github.com/eljojo/safescript/internal/project"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file.html]",
	Short: "Verify script hashes",
	Long: `Verify checks that script hashes still match the code they describe.

With a file argument, every executable inline script in the document is
checked:
  - Scripts with integrity must hash to it
  - Proxies (id is a sha256 integrity) must hash to their id once the id
    is put back to the draft marker
  - Inline scripts with neither are reported as unhashed

Without arguments, run inside a project directory to verify:
  - Local script files still match the integrity recorded by the last build
  - The recorded script-src sources are still current
  - output/scripts.html passes the document checks above`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	var allOK bool
	if len(args) == 1 {
		ok, err := verifyDocument(args[0])
		if err != nil {
			return err
		}
		allOK = ok
	} else {
		p, err := loadProject()
		if err != nil {
			return err
		}
		ok, err := verifyProject(p)
		if err != nil {
			return err
		}
		allOK = ok
	}

	fmt.Println()
	if allOK {
		fmt.Println("All scripts verified.")
		return nil
	}

	return fmt.Errorf("verification failed")
}

// verifyDocument checks every executable inline script of the document at
// path and prints one line per script.
func verifyDocument(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()

	doc, err := document.Parse(f)
	if err != nil {
		return false, err
	}

	allOK := true
	for i, s := range doc.Scripts {
		code, ok := s.Node.InlineCode()
		if !ok || !document.IsExecutable(s.Node) {
			continue
		}
		warnIfDenormalized(scriptName(s.Node), code)

		integrity := s.Node.Props.Get("integrity").Text()
		id := s.Node.Props.Get("id").Text()

		switch {
		case integrity != "":
			fmt.Printf("Checking script %d (%s)... ", i+1, truncateHash(integrity))
			if crypto.VerifyIntegrity(code, integrity) {
				fmt.Println(green("OK"))
				continue
			}
			fmt.Println(red("HASH MISMATCH"))
			fmt.Printf("  Expected: %s\n", integrity)
			fmt.Printf("  Got:      %s\n", crypto.Integrity(code))
			allOK = false

		case crypto.IsIntegrity(id):
			fmt.Printf("Checking proxy %d (%s)... ", i+1, truncateHash(id))
			if csp.VerifyProxy(id, code) {
				fmt.Println(green("OK"))
				continue
			}
			fmt.Println(red("PROXY MISMATCH"))
			allOK = false

		default:
			fmt.Printf("Checking script %d... %s\n", i+1, yellow("UNHASHED"))
			allOK = false
		}
	}
	return allOK, nil
}

// verifyProject compares the project's current scripts with the last build.
func verifyProject(p *project.Project) (bool, error) {
	if p.Built == nil {
		return false, fmt.Errorf("project has not been built yet; run 'safescript build' first")
	}

	scripts, err := p.Scripts()
	if err != nil {
		return false, fmt.Errorf("loading scripts: %w", err)
	}

	allOK := true

	current := make(map[string]string, len(scripts.Files))
	for _, fi := range scripts.Files {
		current[fi.File] = fi.Integrity
	}
	for _, fi := range p.Built.Files {
		fmt.Printf("Checking %s... ", fi.File)
		got, ok := current[fi.File]
		switch {
		case !ok:
			fmt.Println(yellow("NOT IN PROJECT"))
			allOK = false
		case got != fi.Integrity:
			fmt.Println(red("HASH MISMATCH"))
			fmt.Printf("  Expected: %s\n", fi.Integrity)
			fmt.Printf("  Got:      %s\n", got)
			allOK = false
		default:
			fmt.Println(green("OK"))
		}
	}

	nodes, _, _, err := prepareScripts(scripts)
	if err != nil {
		return false, err
	}
	sources := html.HashSources(nodes)
	fmt.Print("Checking script-src sources... ")
	if slices.Equal(sources, p.Built.Sources) {
		fmt.Println(green("OK"))
	} else {
		fmt.Println(red("STALE"))
		fmt.Println("  Run 'safescript build' to refresh the output")
		allOK = false
	}

	fragment := p.FragmentPath()
	rel, _ := filepath.Rel(p.Path, fragment)
	if _, err := os.Stat(fragment); os.IsNotExist(err) {
		fmt.Printf("Checking %s... %s\n", rel, red("MISSING"))
		return false, nil
	}
	ok, err := verifyDocument(fragment)
	if err != nil {
		return false, fmt.Errorf("verifying %s: %w", rel, err)
	}
	return allOK && ok, nil
}
