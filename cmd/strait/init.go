package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"strait/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new strait project",
	Long: `Initialize a new strait project by creating a manifest (strait.toml) and a
hello-world entry module (main.ts). If [path|name] is omitted, initializes the
current directory. A non-existing name creates a directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target, err := initTarget(args)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "StraitProject"
	}

	created, err := project.Scaffold(target, name)
	if err != nil {
		return err
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, relErr := filepath.Rel(wd, target); relErr == nil {
			rel = r
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized strait project in %s\n", rel)
	for _, f := range created {
		fmt.Fprintf(out, "  - %s\n", f)
	}
	return nil
}

func initTarget(args []string) (string, error) {
	if len(args) == 0 || args[0] == "." {
		return os.Getwd()
	}
	arg := args[0]
	if filepath.IsAbs(arg) {
		return arg, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, arg), nil
}
