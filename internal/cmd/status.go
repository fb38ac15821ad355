package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project status and summary",
	Long:  `Displays the current state of the safescript project including its scripts, the last build, and the proxy hash.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	fmt.Printf("Project: %s\n", p.Name)
	fmt.Printf("Path: %s\n\n", p.Path)

	fmt.Println("Scripts:")
	fmt.Printf("  Inline:   %d\n", len(p.Inline))
	fmt.Printf("  External: %d\n", len(p.External))
	fmt.Printf("  Proxied:  %d\n", len(p.Proxy))

	if err := p.Validate(); err != nil {
		fmt.Printf("\nConfig: %s (%v)\n", red("Invalid"), err)
	}

	fmt.Println()
	if p.Built == nil {
		fmt.Printf("Built: %s\n", yellow("No"))
		fmt.Println("  Run 'safescript build' to hash the scripts")
		return nil
	}

	fmt.Printf("Built: %s (%s, %s ago)\n", green("Yes"), p.Built.At.Format("2006-01-02 15:04:05 UTC"), formatDuration(time.Since(p.Built.At)))
	if p.Built.ProxyHash != "" {
		fmt.Printf("Proxy: %s\n", truncateHash(p.Built.ProxyHash))
	}
	fmt.Printf("Sources: %d\n", len(p.Built.Sources))

	fragment := "missing"
	if info, err := os.Stat(p.FragmentPath()); err == nil {
		fragment = formatSize(info.Size())
		if info.ModTime().Before(p.Built.At.Add(-time.Second)) {
			fragment += ", " + yellow("older than the last build")
		}
	}
	fmt.Printf("Fragment: %s\n", fragment)

	return nil
}
