// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	autherrors "playerauth/cli/internal/errors"
)

// refreshCmd re-fetches the player profile for the cached session.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload your player profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		ok, err := a.resume(ctx)
		if !ok {
			if err == nil {
				err = autherrors.New(autherrors.Auth, "not signed in")
			}
			return err
		}
		return a.mgr.RefreshProfile(ctx)
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
