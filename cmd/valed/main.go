package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"valed/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "valed",
	Short: "Prose linting daemon and CLI built on vale",
	Long:  `valed drives the vale prose linter: a language server for editors and a batch linter for whole workspaces`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
