package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strait/internal/version"
)

var (
	versionFormat string
	versionFull   bool
)

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "include recorded build metadata")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show strait build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch strings.ToLower(versionFormat) {
		case "pretty":
			if versionFull {
				fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), version.Banner())
			}
			return nil
		case "json":
			payload := struct {
				Tool      string `json:"tool"`
				Version   string `json:"version"`
				GitCommit string `json:"git_commit,omitempty"`
				BuildDate string `json:"build_date,omitempty"`
			}{
				Tool:    version.Tool,
				Version: version.Version,
			}
			if versionFull {
				payload.GitCommit = version.GitCommit
				payload.BuildDate = version.BuildDate
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		default:
			return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
		}
	},
}
