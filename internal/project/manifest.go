// Package project locates and loads the strait.toml manifest that anchors
// a build: root namespace, source root, runtime mode, entry file and
// external namespace roots.
package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file every project root carries.
const ManifestName = "strait.toml"

// Manifest is a loaded strait.toml plus its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest layout.
type Config struct {
	Package  PackageConfig     `toml:"package"`
	Build    BuildConfig       `toml:"build"`
	External map[string]string `toml:"external"`
}

// PackageConfig names the project; the name doubles as the root target
// namespace.
type PackageConfig struct {
	Name string `toml:"name"`
}

// BuildConfig holds everything the pipeline needs beyond the sources.
type BuildConfig struct {
	// SourceRoot is the directory module namespaces derive from, relative
	// to the manifest. Defaults to the manifest directory.
	SourceRoot string `toml:"source_root"`
	// Entry is the executable entry module relative to SourceRoot. Empty
	// means library output.
	Entry string `toml:"entry"`
	// Runtime selects the target flavor: "native" (default) or "managed".
	Runtime string `toml:"runtime"`
	// UnionArityLimit overrides the per-arity union cutoff; zero keeps the
	// default.
	UnionArityLimit int `toml:"union_arity_limit"`
	// Out is the output directory relative to the manifest. Defaults to
	// "out".
	Out string `toml:"out"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	switch cfg.Build.Runtime {
	case "", "native", "managed":
	default:
		return nil, fmt.Errorf("%s: [build].runtime must be \"native\" or \"managed\", got %q",
			path, cfg.Build.Runtime)
	}
	if cfg.Build.UnionArityLimit < 0 {
		return nil, fmt.Errorf("%s: [build].union_arity_limit must not be negative", path)
	}
	for prefix, ns := range cfg.External {
		if prefix == "" || strings.TrimSpace(ns) == "" {
			return nil, fmt.Errorf("%s: [external] entries need a non-empty prefix and namespace", path)
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{
		Path:   abs,
		Root:   filepath.Dir(abs),
		Config: cfg,
	}, nil
}

// LoadFromDir walks up from startDir, loading the nearest manifest.
func LoadFromDir(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// SourceRootDir returns the absolute source root.
func (m *Manifest) SourceRootDir() string {
	if m.Config.Build.SourceRoot == "" {
		return m.Root
	}
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Build.SourceRoot))
}

// OutDir returns the absolute output directory.
func (m *Manifest) OutDir() string {
	out := m.Config.Build.Out
	if out == "" {
		out = "out"
	}
	return filepath.Join(m.Root, filepath.FromSlash(out))
}

// EntryFile returns the absolute entry module path, or "" for libraries.
func (m *Manifest) EntryFile() string {
	if m.Config.Build.Entry == "" {
		return ""
	}
	return filepath.Join(m.SourceRootDir(), filepath.FromSlash(m.Config.Build.Entry))
}

// EntryRel returns the source-root-relative, extension-stripped entry
// module path the emitter expects, or "" for libraries.
func (m *Manifest) EntryRel() string {
	entry := m.Config.Build.Entry
	if entry == "" {
		return ""
	}
	entry = filepath.ToSlash(entry)
	return strings.TrimSuffix(entry, ".ts")
}
