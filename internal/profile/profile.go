// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package profile turns an authenticated session into an immutable player profile.
package profile

import (
	"context"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
)

// PlayerProfile is a snapshot of the signed-in player. A newer snapshot
// supersedes an older one; snapshots are never mutated.
type PlayerProfile struct {
	PlayerID    string
	DisplayName string
	FetchedAt   time.Time
}

// Complete reports whether both the player id and display name are present.
func (p PlayerProfile) Complete() bool {
	return p.PlayerID != "" && p.DisplayName != ""
}

// Label is the short player tag shown next to the display name.
func (p PlayerProfile) Label() string {
	return "id_" + p.PlayerID
}

// Fetcher retrieves raw profile data for a session.
type Fetcher interface {
	FetchProfile(ctx context.Context, token identity.SessionToken) (identity.ProfileData, error)
}

// Loader builds profiles from a Fetcher.
type Loader struct {
	fetcher Fetcher
	clock   clockwork.Clock
}

// Option configures a Loader.
type Option func(*Loader)

// WithClock sets the clock used for FetchedAt.
func WithClock(c clockwork.Clock) Option {
	return func(l *Loader) { l.clock = c }
}

// NewLoader returns a Loader backed by f.
func NewLoader(f Fetcher, opts ...Option) *Loader {
	l := &Loader{fetcher: f, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and validates the profile for token. Any failure, including an
// incomplete payload, is a ProfileLoad error; a partial profile is never returned.
func (l *Loader) Load(ctx context.Context, token identity.SessionToken) (PlayerProfile, error) {
	data, err := l.fetcher.FetchProfile(ctx, token)
	if err != nil {
		return PlayerProfile{}, autherrors.Wrap(autherrors.ProfileLoad, "fetch profile", err).WithOp("profile_load")
	}
	p := PlayerProfile{
		PlayerID:    strings.TrimSpace(data.PlayerID),
		DisplayName: strings.TrimSpace(data.DisplayName),
		FetchedAt:   l.clock.Now(),
	}
	if !p.Complete() {
		return PlayerProfile{}, autherrors.New(autherrors.ProfileLoad, "incomplete profile").WithOp("profile_load")
	}
	return p, nil
}
