// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure that crosses the session boundary carries a Kind so the presenter
// can pick an actionable message and the session manager can decide which state
// to fall back to.
//
// None of the kinds are retried automatically. Retryable only tells the user that
// running the same command again may succeed.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Transport indicates the identity service could not be reached or answered garbage.
	Transport Kind = "transport"
	// Auth indicates the identity service or provider rejected the credentials.
	Auth Kind = "auth"
	// ProfileLoad indicates the profile fetch after a successful authentication failed.
	ProfileLoad Kind = "profile_load"
	// Timeout indicates a sign-in flow exceeded its deadline.
	Timeout Kind = "timeout"
	// Storage indicates the local credential cache could not be read or written.
	Storage Kind = "storage"
	// Rejected indicates a command was refused because of the current session state.
	Rejected Kind = "rejected"
)

// E wraps an error with kind, the failing operation and a human-friendly message.
type E struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *E) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithOp records the operation that failed.
func (e *E) WithOp(op string) *E {
	e.Op = op
	return e
}

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether repeating the same command by hand may succeed.
func Retryable(err error) bool {
	switch KindOf(err) {
	case Transport, Timeout:
		return true
	default:
		return false
	}
}

// Ensure returns err unchanged when it already has a kind, otherwise wraps it with
// the fallback kind.
func Ensure(err error, fallback Kind, msg string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return Wrap(fallback, msg, err)
}
