package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"strait/internal/driver"
)

var (
	buildNoCache bool
	buildOutDir  string
)

func init() {
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "render every module even when cached")
	buildCmd.Flags().StringVar(&buildOutDir, "out", "", "output directory (overrides the manifest)")
}

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Translate a strait project",
	Long:  "Translate a strait project into target sources using strait.toml as the build definition.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	manifest, err := locateManifest(args)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, manifest)
	if err != nil {
		return err
	}
	opts.Cache = openCache(buildNoCache)

	res, err := driver.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if err := reportDiagnostics(cmd, res, opts); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("build failed with %d diagnostics", res.Bag.Len())
	}

	outDir := manifest.OutDir()
	if buildOutDir != "" {
		outDir = buildOutDir
	}
	written, err := writeOutput(outDir, res.Files)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s\n", written, outDir)
	if res.Entry != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "entry: %s.%s.%s\n", res.Entry.Namespace, res.Entry.Container, res.Entry.Method)
	}
	return nil
}

// writeOutput materializes the rendered files under outDir, creating
// directories as needed. Paths write in sorted order so failures are
// reproducible.
func writeOutput(outDir string, files map[string]string) (int, error) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, rel := range paths {
		dst := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
		if err := os.WriteFile(dst, []byte(files[rel]), 0o644); err != nil {
			return 0, fmt.Errorf("write %s: %w", dst, err)
		}
	}
	return len(paths), nil
}
