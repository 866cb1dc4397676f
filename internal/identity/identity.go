// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package identity defines the capability set the session core consumes from the
// remote identity service, and an HTTP implementation of it.
//
// Tokens are opaque. Nothing in this package parses or validates them.
package identity

import "context"

// SessionToken proves an authenticated identity for the lifetime of the process.
type SessionToken string

// ProfileData is the raw profile payload returned by the identity service.
type ProfileData struct {
	PlayerID    string
	DisplayName string
}

// Service is everything the session manager needs from the identity service.
// Implementations may call real HTTP endpoints or be test doubles.
type Service interface {
	HasCachedCredential(ctx context.Context) (bool, error)
	ResumeWithCachedCredential(ctx context.Context) (SessionToken, error)
	ExchangeProviderToken(ctx context.Context, providerToken string) (SessionToken, error)
	FetchProfile(ctx context.Context, token SessionToken) (ProfileData, error)
	ClearCachedCredential(ctx context.Context) error
}

// CredentialStore persists the resumable credential between runs.
type CredentialStore interface {
	HasCredential() (bool, error)
	LoadCredential() (string, error)
	SaveCredential(credential string) error
	ClearCredential() error
}

// NoticeKind is the type of a server-initiated notification.
type NoticeKind string

const (
	NoticeExpired   NoticeKind = "expired"
	NoticeSignedOut NoticeKind = "signed_out"
	// NoticeStreamClosed and NoticeStreamError are produced locally by the
	// transport when the notification stream ends.
	NoticeStreamClosed NoticeKind = "stream_closed"
	NoticeStreamError  NoticeKind = "stream_error"
)

// Notice is a single push notification.
type Notice struct {
	Kind   NoticeKind
	Reason string
}
