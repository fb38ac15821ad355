package project

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/scripts-readme.md
var scriptsReadmeTemplate string

// TemplateData contains data for rendering templates.
type TemplateData struct {
	ProjectName  string
	ProxyCount   int
	ProxySources string
}

// NewTemplateData collects template data from a project.
func NewTemplateData(p *Project) TemplateData {
	return TemplateData{
		ProjectName:  p.Name,
		ProxyCount:   len(p.Proxy),
		ProxySources: SourceList(p.Proxy),
	}
}

// WriteScriptsReadme creates the README.md file in the scripts directory.
func WriteScriptsReadme(scriptsDir string, data TemplateData) error {
	tmpl, err := template.New("readme").Parse(scriptsReadmeTemplate)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	path := filepath.Join(scriptsDir, "README.md")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating README.md: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	return nil
}

// SourceList returns a comma-separated list of script sources.
func SourceList(scripts []ExternalScript) string {
	srcs := make([]string, len(scripts))
	for i, s := range scripts {
		srcs[i] = s.Attrs.Get("src").Text()
	}
	return strings.Join(srcs, ", ")
}
