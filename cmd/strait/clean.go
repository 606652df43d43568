package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strait/internal/driver"
	"strait/internal/version"
)

var cleanCache bool

func init() {
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "also drop the shared disk cache")
}

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove a project's output directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	manifest, err := locateManifest(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	outDir := manifest.OutDir()
	if _, err := os.Stat(outDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %q: %w", outDir, err)
		}
		fmt.Fprintln(out, "output directory not found")
	} else {
		if err := os.RemoveAll(outDir); err != nil {
			return fmt.Errorf("failed to remove %q: %w", outDir, err)
		}
		fmt.Fprintf(out, "removed %s\n", outDir)
	}

	if cleanCache {
		cache, err := driver.OpenDiskCache(version.Tool)
		if err != nil {
			return fmt.Errorf("open disk cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("drop disk cache: %w", err)
		}
		fmt.Fprintln(out, "dropped disk cache")
	}
	return nil
}
