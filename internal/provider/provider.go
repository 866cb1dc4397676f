// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package provider runs the interactive identity provider flow that yields a
// provider access token for the identity service to exchange.
package provider

import (
	"context"
	"os/exec"
	"runtime"
)

// Provider is the external interactive sign-in flow.
type Provider interface {
	// SignIn blocks until the player finishes (or abandons) the provider flow
	// and returns the provider access token.
	SignIn(ctx context.Context) (string, error)
	// SignOut forgets any provider-side state held by this process.
	SignOut()
}

// OpenBrowser attempts to open the provided URL in the user's default browser.
// It starts the platform launcher but does not wait for it:
//   - Windows: rundll32 url.dll,FileProtocolHandler
//   - macOS: open
//   - Linux: xdg-open
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
