// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session owns the player's authentication session: the sign-in state
// machine, the profile snapshot and the ordered event stream consumers render from.
//
// Only one sign-in orchestration (startup resume or interactive sign-in) runs at a
// time. A request that the current state does not permit is rejected and logged,
// never queued. Failures from the identity service always end in a state
// transition plus an error event; nothing is retried automatically.
package session

// State is the authentication state of the session.
type State int

const (
	SignedOut State = iota
	ResumingSession
	AwaitingInteractiveAuth
	ExchangingToken
	SignedIn
	Expired
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed_out"
	case ResumingSession:
		return "resuming_session"
	case AwaitingInteractiveAuth:
		return "awaiting_interactive_auth"
	case ExchangingToken:
		return "exchanging_token"
	case SignedIn:
		return "signed_in"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// InFlight reports whether a sign-in orchestration is running.
func (s State) InFlight() bool {
	return s == ResumingSession || s == AwaitingInteractiveAuth || s == ExchangingToken
}

// HasSession reports whether the state carries a session and profile.
func (s State) HasSession() bool {
	return s == SignedIn || s == Expired
}
