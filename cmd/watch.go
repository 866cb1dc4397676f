// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/notify"
)

// watchCmd keeps the session open and shows server notifications.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay signed in and follow session notifications",
	Long: `The watch command signs in like login and then listens for notifications from
the identity service: session expiry, remote sign-out and profile changes are shown
as they arrive. Press Ctrl+C to stop.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, os.Stdout)
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.signIn(ctx); err != nil {
			return err
		}
		if a.manifest.Notify.Origin == "" {
			return autherrors.New(autherrors.Transport, "the identity service does not publish a notification endpoint")
		}
		src, err := notify.New(a.manifest.Notify.Origin, a.log.With().Str("component", "notify").Logger())
		if err != nil {
			return autherrors.Wrap(autherrors.Transport, "notification endpoint", err)
		}

		pterm.Info.Println("Watching session notifications (Ctrl+C to stop)")
		return a.mgr.Watch(ctx, src)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
