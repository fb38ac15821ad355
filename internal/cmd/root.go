package cmd

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var version = "dev"

var verbose bool

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "safescript",
})

var rootCmd = &cobra.Command{
	Use:   "safescript",
	Short: "Hash inline scripts and build trusted loaders for strict CSP",
	Long: `safescript computes Content-Security-Policy hashes for inline scripts and
builds self-identifying loader scripts that inject external scripts at
runtime, so pages can run under a hash-based or strict-dynamic policy.

Create a project:     safescript init my-site
Build the scripts:    safescript build
Rewrite a document:   safescript rewrite index.html --proxy -o out.html
Verify a document:    safescript verify out.html`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details to stderr")
}

func Execute(v string) error {
	version = v
	rootCmd.Version = v
	return rootCmd.Execute()
}

var (
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func green(s string) string  { return greenStyle.Render(s) }
func yellow(s string) string { return yellowStyle.Render(s) }
func red(s string) string    { return redStyle.Render(s) }
