package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eljojo/safescript/internal/crypto"
	"github.com/eljojo/safescript/internal/script"
)

const (
	ProjectFileName = "safescript.yml"
	ScriptsDir      = "scripts"
	OutputDir       = "output"
)

// InlineScript is a script whose code is embedded in the page.
type InlineScript struct {
	Key   string       `yaml:"key,omitempty"`
	Code  string       `yaml:"code,omitempty"`
	File  string       `yaml:"file,omitempty"` // Read relative to the project directory
	Attrs script.Props `yaml:"attrs,omitempty"`
}

// ExternalScript is a script loaded by src. When File names a local copy
// of the script, its integrity is computed from that file.
type ExternalScript struct {
	Key   string       `yaml:"key,omitempty"`
	File  string       `yaml:"file,omitempty"`
	Attrs script.Props `yaml:"attrs"`
}

// FileInfo stores the integrity of a file used by a build.
type FileInfo struct {
	File      string `yaml:"file"`
	Integrity string `yaml:"integrity"`
}

// Built stores the result of the last build.
type Built struct {
	At        time.Time  `yaml:"at"`
	ProxyHash string     `yaml:"proxy_hash,omitempty"`
	Sources   []string   `yaml:"sources"`
	Files     []FileInfo `yaml:"files,omitempty"`
}

// Project represents a safescript project configuration.
type Project struct {
	Name     string           `yaml:"name"`
	Created  string           `yaml:"created"`
	Inline   []InlineScript   `yaml:"inline,omitempty"`
	External []ExternalScript `yaml:"external,omitempty"`
	// Proxy scripts are loaded through one trusted proxy element.
	Proxy []ExternalScript `yaml:"proxy,omitempty"`
	Built *Built           `yaml:"built,omitempty"`

	// Path is the directory containing this project (not serialized)
	Path string `yaml:"-"`
}

// Load reads a project from a directory.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}

	p.Path = dir
	return &p, nil
}

// Save writes the project configuration to disk.
func (p *Project) Save() error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}

	path := filepath.Join(p.Path, ProjectFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing project file: %w", err)
	}

	return nil
}

// Validate checks that the project configuration is valid.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}

	keys := make(map[string]bool)
	checkKey := func(key string) error {
		if key == "" {
			return nil
		}
		if keys[key] {
			return fmt.Errorf("duplicate script key %q", key)
		}
		keys[key] = true
		return nil
	}

	for i, s := range p.Inline {
		if (s.Code == "") == (s.File == "") {
			return fmt.Errorf("inline script %d: exactly one of code or file is required", i+1)
		}
		if s.Attrs.Has("src") {
			return fmt.Errorf("inline script %d: src is not allowed on inline scripts", i+1)
		}
		if err := checkKey(s.Key); err != nil {
			return err
		}
	}

	for i, s := range p.External {
		if !s.Attrs.Get("src").Truthy() {
			return fmt.Errorf("external script %d: src is required", i+1)
		}
		if err := checkKey(s.Key); err != nil {
			return err
		}
	}

	for i, s := range p.Proxy {
		if !s.Attrs.Get("src").Truthy() {
			return fmt.Errorf("proxy script %d: src is required", i+1)
		}
		if err := checkKey(s.Key); err != nil {
			return err
		}
	}

	return nil
}

// ScriptsPath returns the path to the local scripts directory.
func (p *Project) ScriptsPath() string {
	return filepath.Join(p.Path, ScriptsDir)
}

// OutputPath returns the path to the output directory.
func (p *Project) OutputPath() string {
	return filepath.Join(p.Path, OutputDir)
}

// FragmentPath returns the path of the rendered script fragment.
func (p *Project) FragmentPath() string {
	return filepath.Join(p.Path, OutputDir, "scripts.html")
}

// PagePath returns the path of the rendered preview page.
func (p *Project) PagePath() string {
	return filepath.Join(p.Path, OutputDir, "page.html")
}

// Scripts holds the script nodes described by a project.
type Scripts struct {
	// Direct nodes are embedded as they are, in inline then external order.
	Direct []*script.Node
	// Proxied nodes are loaded by a trusted proxy.
	Proxied []*script.Node
	// Files lists the integrity of every local file that was read.
	Files []FileInfo
}

// Scripts converts the project entries into script nodes. Inline files are
// read into the node's code; external files are hashed into integrity
// unless the entry already sets one.
func (p *Project) Scripts() (*Scripts, error) {
	out := &Scripts{}

	for i, s := range p.Inline {
		code := s.Code
		if s.File != "" {
			data, err := os.ReadFile(p.resolve(s.File))
			if err != nil {
				return nil, fmt.Errorf("inline script %d: %w", i+1, err)
			}
			code = string(data)
			out.Files = append(out.Files, FileInfo{File: s.File, Integrity: crypto.Integrity(code)})
		}
		n := script.NewInline(code, s.Attrs.Clone()...)
		n.Key = s.Key
		out.Direct = append(out.Direct, n)
	}

	for i, s := range p.External {
		n := script.NewScript(s.Attrs.Clone()...)
		n.Key = s.Key
		if s.File != "" {
			h, err := crypto.IntegrityFile(p.resolve(s.File))
			if err != nil {
				return nil, fmt.Errorf("external script %d: %w", i+1, err)
			}
			out.Files = append(out.Files, FileInfo{File: s.File, Integrity: h})
			if !n.Props.Get("integrity").Truthy() {
				n.Props = n.Props.Set("integrity", script.String(h))
			}
		}
		out.Direct = append(out.Direct, n)
	}

	for _, s := range p.Proxy {
		n := script.NewScript(s.Attrs.Clone()...)
		n.Key = s.Key
		out.Proxied = append(out.Proxied, n)
	}

	return out, nil
}

func (p *Project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Path, path)
}

// FindProjectDir searches up the directory tree for a safescript.yml file.
// Returns the directory containing the project, or an error if not found.
func FindProjectDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		projectPath := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(projectPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no %s found in %s or any parent directory", ProjectFileName, startDir)
		}
		dir = parent
	}
}

// New creates a new, empty project in dir.
func New(dir, name string) (*Project, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}

	scriptsDir := filepath.Join(dir, ScriptsDir)
	if err := os.MkdirAll(scriptsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating scripts directory: %w", err)
	}

	p := &Project{
		Name:    name,
		Created: time.Now().Format("2006-01-02"),
		Path:    dir,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := p.Save(); err != nil {
		return nil, err
	}

	return p, nil
}
