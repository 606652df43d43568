package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strait/internal/driver"
)

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Print the resolved module graph in build order",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	manifest, err := locateManifest(args)
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, manifest)
	if err != nil {
		return err
	}
	opts.CheckOnly = true

	res, err := driver.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, rel := range res.Order {
		fmt.Fprintln(out, rel)
	}
	for _, cycle := range res.Cycles {
		fmt.Fprintf(out, "cycle: %s\n", strings.Join(cycle, " -> "))
	}

	if err := reportDiagnostics(cmd, res, opts); err != nil {
		return err
	}
	if res.Bag.HasErrors() {
		return fmt.Errorf("graph resolution failed")
	}
	return nil
}
