package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eljojo/safescript/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new safescript project",
	Long: `Create a new safescript project with a scripts directory and configuration.

The project will contain:
  - safescript.yml: Inline, external and proxied scripts
  - scripts/: Directory for local script files

Example:
  safescript init my-site
  safescript init my-site --name "Marketing site"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initName string

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initName, "name", "", "Project name (defaults to directory name)")
}

func runInit(cmd *cobra.Command, args []string) error {
	dirName := "site"
	if len(args) > 0 {
		dirName = args[0]
	}

	dir, err := filepath.Abs(dirName)
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}

	if _, err := os.Stat(filepath.Join(dir, project.ProjectFileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", project.ProjectFileName, dir)
	}

	name := initName
	if name == "" {
		name = filepath.Base(dir)
	}

	p, err := project.New(dir, name)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}

	if err := project.WriteScriptsReadme(p.ScriptsPath(), project.NewTemplateData(p)); err != nil {
		return fmt.Errorf("writing scripts README: %w", err)
	}

	fmt.Printf("Created project %s in %s\n\n", p.Name, p.Path)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add inline, external and proxy scripts to %s\n", project.ProjectFileName)
	fmt.Println("  2. Run 'safescript build' to hash them and render the script tags")
	return nil
}
