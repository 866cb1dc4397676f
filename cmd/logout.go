// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var clearCredential bool

// logoutCmd ends the session and, by default, deletes the cached credential.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the cached credential",
	Long: `The logout command ends the current session. Unless --clear=false is given it
also removes the resumable credential from the OS keychain, so the next login
needs the browser again.

With --clear=false the credential stays cached and the next command resumes silently.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		// Resume first so the provider and any listeners see a proper sign-out.
		if ok, _ := a.resume(ctx); !ok {
			a.log.Debug().Msg("no active session to end")
		}
		a.resetFailure()
		a.mgr.SignOut(ctx, clearCredential)
		if err := a.failure(); err != nil {
			return err
		}
		if clearCredential {
			pterm.Success.Println("Cached credential removed")
		}
		return nil
	},
}

func init() {
	logoutCmd.Flags().BoolVar(&clearCredential, "clear", true, "Remove the cached credential from the OS keychain")
	rootCmd.AddCommand(logoutCmd)
}
