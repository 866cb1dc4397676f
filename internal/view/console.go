// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package view renders session events to the terminal. The Console keeps its
// own panel state, updated only from the event stream, so it can be attached to
// any session manager without reaching into it.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"playerauth/cli/internal/logging"
	"playerauth/cli/internal/session"
)

// Source is anything that publishes session events.
type Source interface {
	Subscribe(h session.Handler) *session.Subscription
}

// Console prints one line per event and tracks which panel is visible.
type Console struct {
	w     io.Writer
	state PanelState
	sub   *session.Subscription
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Attach subscribes the console to src. Only events published afterwards are shown.
func (c *Console) Attach(src Source) {
	c.sub = src.Subscribe(c.Handle)
}

// Detach stops receiving events.
func (c *Console) Detach() {
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
}

// Snapshot returns what the console currently displays.
func (c *Console) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// Handle applies ev to the panel state and prints it. Events older than the
// last one handled are ignored.
func (c *Console) Handle(ev session.Event) {
	line := c.apply(ev)
	if line != "" {
		fmt.Fprintln(c.w, line)
	}
}

func (c *Console) apply(ev session.Event) string {
	ps := &c.state
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if !ps.advance(ev.Seq) {
		return ""
	}

	switch ev.Type {
	case session.EventSignedIn:
		ps.showPlayer(ev.Profile)
		return pterm.Success.Sprint(fmt.Sprintf("Signed in as %s (%s)", ev.Profile.DisplayName, ev.Profile.Label()))
	case session.EventAvatarUpdated:
		if ps.panel != PanelPlayer {
			return ""
		}
		ps.profile = ev.Profile
		return pterm.Info.Sprint(fmt.Sprintf("Profile updated: %s (%s)", ev.Profile.DisplayName, ev.Profile.Label()))
	case session.EventExpired:
		ps.expired = true
		return pterm.Warning.Sprint("Session expired. Run 'playerauth logout' and then 'playerauth login'.")
	case session.EventSignedOut:
		ps.showSignIn()
		return pterm.Info.Sprint("Signed out")
	case session.EventError:
		ps.lastError = logging.PresentError(string(ev.Op), ev.Err)
		if ev.State == session.SignedOut {
			ps.showSignIn()
		}
		return pterm.Error.Sprint(ps.lastError)
	}
	return ""
}

// RenderPanel draws the visible panel as a box.
func (c *Console) RenderPanel() string {
	s := c.Snapshot()
	if s.Panel == PanelSignIn {
		body := "Not signed in.\nRun 'playerauth login' to sign in."
		if s.LastError != "" {
			body += "\n\n" + pterm.NewStyle(pterm.FgGray).Sprint("Last error: "+s.LastError)
		}
		return pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Sign In")).
			Sprint(body)
	}

	var b strings.Builder
	b.WriteString(pterm.NewStyle(pterm.FgLightCyan).Sprint("Player:  ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(s.Name))
	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgLightCyan).Sprint("ID:      ") + s.Label)
	if s.Expired {
		b.WriteString("\n")
		b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("Session expired"))
	}
	return pterm.DefaultBox.
		WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Player")).
		Sprint(b.String())
}

// ShowDeviceCode prints the verification link and user code.
func (c *Console) ShowDeviceCode(uri, code string) {
	fmt.Fprintf(c.w, "Open this link to sign in:\n%s\n\nand enter the code: %s\n\n",
		uri, pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(code))
}
