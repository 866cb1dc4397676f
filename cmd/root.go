// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the playerauth CLI.
// Each subcommand builds a session manager from the discovered endpoints and
// the OS keychain, then drives it and renders its events to the terminal.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"playerauth/cli/internal/config"
	"playerauth/cli/internal/logging"
	"playerauth/cli/internal/manifest"
)

var (
	showVersion bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "playerauth",
	Short:         "Sign in to your player account from the terminal",
	Long:          `playerauth signs you into the player identity service, keeps a resumable credential in the OS keychain and shows your player profile.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			config.SetVerbose()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("playerauth %s\n", Version)

			cfg, err := config.Load()
			if err != nil {
				return nil
			}
			if m, err := manifest.GetEndpoints(cmd.Context(), manifestSource(cfg)); err == nil {
				fmt.Printf("endpoints manifest v%d\n", m.Version)
			}
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.PresentFailure(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and endpoint manifest version")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
}
