package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"strait/internal/diagfmt"
	"strait/internal/driver"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit diagnostics as JSON")
}

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Resolve and lower a project without writing output",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	if checkJSON {
		if err := diagfmt.WriteJSON(cmd.OutOrStdout(), res.Bag, res.FileSet, diagfmt.JSONOpts{
			Max:          opts.MaxDiagnostics,
			IncludeNotes: true,
		}); err != nil {
			return err
		}
	} else if err := reportDiagnostics(cmd, res, opts); err != nil {
		return err
	}

	if res.Bag.HasErrors() {
		return fmt.Errorf("check failed")
	}
	if !checkJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d modules\n", len(res.Modules))
	}
	return nil
}
