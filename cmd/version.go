package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carrousel-labs/review-proxy/config"
)

// SetVersion records build information injected at link time.
func SetVersion(version, commitHash string) {
	config.SetBuildInfo(version, commitHash)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reviewproxy %s (commit %s)\n", config.Version, config.CommitHash)
		},
	}
}
