// Package manifest handles jrt.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file name looked up in project directories.
const FileName = "jrt.toml"

// Manifest represents a jrt.toml project configuration.
type Manifest struct {
	Archive  ArchiveConfig  `toml:"archive"`
	Rewriter RewriterConfig `toml:"rewriter"`
	Output   OutputConfig   `toml:"output"`

	// Dir is the directory containing the jrt.toml file (set at load time).
	Dir string `toml:"-"`
}

// ArchiveConfig locates the capsule archive.
type ArchiveConfig struct {
	Path string `toml:"path"`
}

// RewriterConfig configures bytecode quickening.
type RewriterConfig struct {
	RewriteBytecodes bool `toml:"rewrite-bytecodes"`
}

// OutputConfig configures listing output and log verbosity.
type OutputConfig struct {
	Color     bool `toml:"color"`
	Verbosity int  `toml:"verbosity"`
}

// Default returns the configuration used when no manifest exists.
func Default() *Manifest {
	return &Manifest{
		Archive:  ArchiveConfig{Path: "jrt.db"},
		Rewriter: RewriterConfig{RewriteBytecodes: true},
		Output:   OutputConfig{Color: true},
	}
}

// Load parses a jrt.toml file from the given directory. Defaults are in
// place before decoding, so absent keys keep them and explicit values,
// false included, win.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a jrt.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
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
			// Reached the filesystem root.
			return nil, nil
		}
		dir = parent
	}
}

// ArchivePath returns the archive location, resolved against the
// manifest directory when relative.
func (m *Manifest) ArchivePath() string {
	if filepath.IsAbs(m.Archive.Path) || m.Dir == "" {
		return m.Archive.Path
	}
	return filepath.Join(m.Dir, m.Archive.Path)
}
