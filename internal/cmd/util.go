package cmd

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/eljojo/safescript/internal/project"
)

// loadProject finds and loads the project enclosing the working directory.
func loadProject() (*project.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	projectDir, err := project.FindProjectDir(cwd)
	if err != nil {
		return nil, fmt.Errorf("no safescript project found (run 'safescript init' first)")
	}

	p, err := project.Load(projectDir)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	logger.Debug("loaded project", "name", p.Name, "path", p.Path)
	return p, nil
}

// writeOutput writes content to path, or to stdout if path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Generated %s (%s)\n", path, formatSize(int64(len(content))))
	return nil
}

// warnIfDenormalized warns when code is not in Unicode NFC. Editors and
// pipelines that normalize text would silently change the hash.
func warnIfDenormalized(name, code string) {
	if !norm.NFC.IsNormalString(code) {
		logger.Warn("script is not NFC-normalized; re-encoding it will change its hash", "script", name)
	}
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func truncateHash(hash string) string {
	// sha256-abc123... -> sha256-abc123...
	if len(hash) > 20 {
		return hash[:20] + "..."
	}
	return hash
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 365 {
		years := days / 365
		return fmt.Sprintf("%d year%s", years, plural(years))
	}
	if days > 30 {
		months := days / 30
		return fmt.Sprintf("%d month%s", months, plural(months))
	}
	if days > 0 {
		return fmt.Sprintf("%d day%s", days, plural(days))
	}
	hours := int(d.Hours())
	if hours > 0 {
		return fmt.Sprintf("%d hour%s", hours, plural(hours))
	}
	return "just now"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
