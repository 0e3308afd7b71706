// Package main provides the entry point for the namefang CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/namefang/cmd/namefang/commands"
	"github.com/Sumatoshi-tech/namefang/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "namefang",
		Short: "Namefang - identifier standardization for Python fragments",
		Long: `Namefang reviews Python code fragments for abbreviated or
non-standard identifiers and rewrites them to their canonical forms.

Commands:
  review    Review a fragment and suggest or apply renames
  dict      Manage the terminology dictionary
  stats     Show transformation statistics
  mcp       Serve the review engine over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewReviewCommand())
	rootCmd.AddCommand(commands.NewDictCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "namefang %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
