// version.go prints build metadata injected at link time.
package main

import (
	"fmt"

	"github.com/example/wtail/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print wtail version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "wtail %s (commit %s, tree %s, built %s, %s, %s)\n",
				info.Version, info.GitCommit, info.GitTreeState, info.BuildDate, info.GoVersion, info.Platform)
		},
	}
}
