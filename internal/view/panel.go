// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package view

import (
	"sync"

	"playerauth/cli/internal/profile"
)

// Panel is the area of the console the player currently sees.
type Panel int

const (
	// PanelSignIn offers sign-in; shown whenever there is no session.
	PanelSignIn Panel = iota
	// PanelPlayer shows the signed-in player.
	PanelPlayer
)

func (p Panel) String() string {
	if p == PanelPlayer {
		return "player"
	}
	return "sign_in"
}

// PanelState is the console's own copy of what it displays. It is only
// changed by events, never by reading the session manager.
type PanelState struct {
	mu sync.Mutex

	panel     Panel
	profile   profile.PlayerProfile
	expired   bool
	lastError string
	lastSeq   uint64
}

// Snapshot is an immutable copy of PanelState.
type Snapshot struct {
	Panel     Panel
	Label     string
	Name      string
	Expired   bool
	LastError string
}

// Snapshot returns the current display state.
func (ps *PanelState) Snapshot() Snapshot {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	s := Snapshot{Panel: ps.panel, Expired: ps.expired, LastError: ps.lastError}
	if ps.panel == PanelPlayer {
		s.Label = ps.profile.Label()
		s.Name = ps.profile.DisplayName
	}
	return s
}

// advance records seq and reports whether it is newer than anything seen.
func (ps *PanelState) advance(seq uint64) bool {
	if seq != 0 && seq <= ps.lastSeq {
		return false
	}
	ps.lastSeq = seq
	return true
}

func (ps *PanelState) showPlayer(p profile.PlayerProfile) {
	ps.panel = PanelPlayer
	ps.profile = p
	ps.expired = false
	ps.lastError = ""
}

func (ps *PanelState) showSignIn() {
	ps.panel = PanelSignIn
	ps.profile = profile.PlayerProfile{}
	ps.expired = false
}
