// Package main provides the entry point for the Wiki Crawler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for Wiki Crawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicrawler",
		Short: "Find the shortest link path between two Wikipedia articles",
		Long: `Wiki Crawler finds the shortest chain of article links that leads from one
Wikipedia page to another.

It explores the link graph breadth-first, one layer at a time, so the first
path it finds is a shortest one. Requests are rate limited and retried, and
the links of every expanded article are cached so repeated searches get
faster.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
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
