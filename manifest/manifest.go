// Package manifest handles madeup.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/madeup/vm"
)

// FileName is the name of the project file.
const FileName = "madeup.toml"

// Manifest represents a madeup.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Render  Render  `toml:"render"`
	Server  Server  `toml:"server"`

	// Dir is the directory containing the madeup.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// Render configures interpretation runs.
type Render struct {
	Mode vm.RenderMode `toml:"mode"`
	Seed *int64        `toml:"seed"`
	Time float64       `toml:"time"`
}

// Server configures the madeup server.
type Server struct {
	Addr  string `toml:"addr"`
	Store string `toml:"store"`
}

// Load parses a madeup.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Project.Entry == "" {
		m.Project.Entry = "main.mup"
	}
	if m.Server.Addr == "" {
		m.Server.Addr = ":8080"
	}
	if m.Server.Store == "" {
		m.Server.Store = filepath.Join(".madeup", "sketches.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a madeup.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the entry program.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Project.Entry)
}

// StorePath returns the absolute path of the sketch database.
func (m *Manifest) StorePath() string {
	return m.resolve(m.Server.Store)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// Options converts the render settings into interpreter options.
func (m *Manifest) Options() []vm.Option {
	opts := []vm.Option{
		vm.WithRenderMode(m.Render.Mode),
		vm.WithTime(m.Render.Time),
	}
	if m.Render.Seed != nil {
		opts = append(opts, vm.WithSeed(*m.Render.Seed))
	}
	return opts
}
