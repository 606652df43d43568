package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"strait/internal/diagfmt"
	"strait/internal/driver"
	"strait/internal/project"
	"strait/internal/version"
)

// locateManifest resolves the manifest for a command's optional path
// argument: an explicit path is searched from there, otherwise the search
// walks up from the working directory.
func locateManifest(args []string) (*project.Manifest, error) {
	start := "."
	if len(args) > 0 && args[0] != "" {
		start = args[0]
	}
	info, err := os.Stat(start)
	if err != nil {
		return nil, fmt.Errorf("cannot access %q: %w", start, err)
	}
	if !info.IsDir() {
		start = filepath.Dir(start)
	}
	m, ok, err := project.LoadFromDir(start)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no %s found in %q or any parent directory (run `strait init` to create one)",
			project.ManifestName, start)
	}
	return m, nil
}

// driverOptions maps a manifest plus the shared flags into driver options.
func driverOptions(cmd *cobra.Command, m *project.Manifest) (driver.Options, error) {
	entry := m.EntryFile()
	if entry == "" {
		return driver.Options{}, fmt.Errorf("%s does not define [build].entry", m.Path)
	}

	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return driver.Options{}, err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}

	return driver.Options{
		EntryFile:       entry,
		ProjectRoot:     m.Root,
		SourceRoot:      m.SourceRootDir(),
		RootNamespace:   m.Config.Package.Name,
		Runtime:         m.Config.Build.Runtime,
		EntryRel:        m.EntryRel(),
		ExternalRoots:   m.Config.External,
		UnionArityLimit: m.Config.Build.UnionArityLimit,
		Jobs:            jobs,
		MaxDiagnostics:  maxDiags,
	}, nil
}

// openCache opens the standard disk cache unless disabled. Cache failures
// degrade to uncached builds.
func openCache(disabled bool) *driver.DiskCache {
	if disabled {
		return nil
	}
	cache, err := driver.OpenDiskCache(version.Tool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: disk cache unavailable: %v\n", err)
		return nil
	}
	return cache
}

// colorEnabled resolves the --color tri-state against the output stream.
func colorEnabled(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stderr), nil
	default:
		return false, fmt.Errorf("unsupported --color value %q (must be auto, on, or off)", mode)
	}
}

// reportDiagnostics pretty-prints a run's diagnostics to stderr.
func reportDiagnostics(cmd *cobra.Command, res *driver.Result, opts driver.Options) error {
	if res.Bag.Len() == 0 {
		return nil
	}
	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}
	fs := res.FileSet
	diagfmt.Pretty(os.Stderr, res.Bag, fs, diagfmt.PrettyOpts{
		Color:     useColor,
		Max:       opts.MaxDiagnostics,
		ShowNotes: true,
		ShowHints: true,
	})
	return nil
}
