// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// loginCmd resumes the cached session or runs the device sign-in flow.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in with your player account",
	Long: `The login command first tries to resume the session from the credential cached
in the OS keychain. If there is none, or the identity service no longer accepts it,
it starts a device sign-in: open the printed link, enter the code and approve.

The browser is opened automatically unless open_browser is false in the config file.
The sign-in is abandoned after sign_in_timeout_seconds (5 minutes by default).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		return a.signIn(ctx)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
