// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"playerauth/cli/internal/profile"
)

// EventType enumerates the notifications a consumer can receive.
type EventType string

const (
	// EventSignedIn carries the freshly loaded profile.
	EventSignedIn EventType = "signed_in"
	// EventSignedOut reports that the session ended, locally or by the server.
	EventSignedOut EventType = "signed_out"
	// EventExpired reports a server-side expiry; the last profile is kept.
	EventExpired EventType = "expired"
	// EventAvatarUpdated carries a re-fetched profile superseding the previous one.
	EventAvatarUpdated EventType = "avatar_updated"
	// EventError reports a failed orchestration step.
	EventError EventType = "error"
)

// Operation names the orchestration step an error event came from.
type Operation string

const (
	OpResume            Operation = "resume"
	OpInteractiveSignIn Operation = "interactive_sign_in"
	OpExchange          Operation = "exchange"
	OpProfileLoad       Operation = "profile_load"
	OpSignOut           Operation = "sign_out"
	OpRefreshProfile    Operation = "refresh_profile"
	OpWatch             Operation = "watch"
)

// Event is an immutable notification. Seq increases strictly in publish order.
// Profile is set for signed_in and avatar_updated; Op and Err for error.
type Event struct {
	Seq     uint64
	Type    EventType
	State   State
	Profile profile.PlayerProfile
	Op      Operation
	Err     error
}

// Handler receives events on the bus dispatcher goroutine. Handlers may call
// back into the Manager but must not call Flush or Close.
type Handler func(Event)
