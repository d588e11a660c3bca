// Package main provides the entry point for the taanscrape CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for taanscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taanscrape",
		Short: "Scrape the TAAN member directory to a spreadsheet",
		Long: `taanscrape fetches every member record from the public TAAN directory
(https://www.taan.org.np/members/) and writes them to a spreadsheet with a
fixed 13-column layout. Fields that cannot be extracted are filled with a
placeholder value so no cell is ever empty.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScrapeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
