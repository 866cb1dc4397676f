// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	autherrors "playerauth/cli/internal/errors"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatFailure renders a categorized failure with a title, a short explanation,
// the next action and masked technical details.
func FormatFailure(err error) string {
	if err == nil {
		return ""
	}
	var title, action string
	var reasons []string

	switch autherrors.KindOf(err) {
	case autherrors.Transport:
		title = "Identity Service Unreachable"
		reasons = []string{
			"Your internet connection was disrupted",
			"The identity service is restarting or under maintenance",
			"A firewall or proxy blocked the request",
		}
		action = "Check your connection and run the command again"
	case autherrors.Auth:
		title = "Sign-In Rejected"
		reasons = []string{
			"The provider sign-in was declined or expired",
			"Your cached session is no longer valid",
		}
		action = "Run 'playerauth login' to sign in again"
	case autherrors.ProfileLoad:
		title = "Profile Unavailable"
		reasons = []string{
			"Authentication succeeded but your player profile could not be loaded",
		}
		action = "Run 'playerauth login' again in a moment"
	case autherrors.Timeout:
		title = "Sign-In Timed Out"
		reasons = []string{
			"The browser step was not completed in time",
		}
		action = "Run 'playerauth login' and finish the browser step sooner"
	case autherrors.Storage:
		title = "Credential Cache Error"
		reasons = []string{
			"The OS keychain is locked or unavailable",
			"The keyring backend configured in config.json cannot be opened",
		}
		action = "Unlock your keychain or set keyring.backends in the config file"
	case autherrors.Rejected:
		title = "Not Allowed Right Now"
		reasons = []string{
			"The session is not in a state that accepts this command",
		}
		action = "Run 'playerauth whoami' to see the current state"
	default:
		title = "Something Went Wrong"
		action = "Run the command again with --verbose for more details"
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n\n")
	if len(reasons) > 0 {
		b.WriteString("This usually happens when:\n")
		for _, r := range reasons {
			b.WriteString("  • " + r + "\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ " + action))
	b.WriteString("\n")
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(msg)))
	}
	return b.String()
}

// PresentFailure prints FormatFailure(err) surrounded by blank lines.
func PresentFailure(err error) {
	if err == nil {
		return
	}
	fmt.Println()
	fmt.Println(FormatFailure(err))
	fmt.Println()
}
