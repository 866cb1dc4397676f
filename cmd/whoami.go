// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	autherrors "playerauth/cli/internal/errors"

	"github.com/spf13/cobra"
)

// whoamiCmd shows the player behind the cached session.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in player",
	Long: `The whoami command resumes the session from the cached credential and shows the
player profile. It never starts an interactive sign-in; if there is no usable
credential it says so and exits successfully.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		_, err = a.resume(ctx)
		a.mgr.Flush()
		fmt.Println(a.console.RenderPanel())
		if err != nil && autherrors.KindOf(err) != autherrors.Auth {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
