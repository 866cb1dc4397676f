// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
)

type fetchFunc func(ctx context.Context, token identity.SessionToken) (identity.ProfileData, error)

func (f fetchFunc) FetchProfile(ctx context.Context, token identity.SessionToken) (identity.ProfileData, error) {
	return f(ctx, token)
}

func TestLoad(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)

	tests := []struct {
		name    string
		data    identity.ProfileData
		err     error
		want    PlayerProfile
		wantErr bool
	}{
		{
			name: "complete",
			data: identity.ProfileData{PlayerID: "p-1", DisplayName: "  Ada  "},
			want: PlayerProfile{PlayerID: "p-1", DisplayName: "Ada", FetchedAt: now},
		},
		{
			name:    "missing display name",
			data:    identity.ProfileData{PlayerID: "p-1", DisplayName: "   "},
			wantErr: true,
		},
		{
			name:    "missing player id",
			data:    identity.ProfileData{DisplayName: "Ada"},
			wantErr: true,
		},
		{
			name:    "fetch failure",
			err:     autherrors.New(autherrors.Transport, "unreachable"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken identity.SessionToken
			l := NewLoader(fetchFunc(func(_ context.Context, token identity.SessionToken) (identity.ProfileData, error) {
				gotToken = token
				return tt.data, tt.err
			}), WithClock(clock))

			p, err := l.Load(context.Background(), "st-1")
			assert.Equal(t, identity.SessionToken("st-1"), gotToken)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, autherrors.Is(err, autherrors.ProfileLoad))
				assert.Equal(t, PlayerProfile{}, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestLoadKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	l := NewLoader(fetchFunc(func(context.Context, identity.SessionToken) (identity.ProfileData, error) {
		return identity.ProfileData{}, cause
	}))
	_, err := l.Load(context.Background(), "st")
	assert.ErrorIs(t, err, cause)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "id_p-9", PlayerProfile{PlayerID: "p-9"}.Label())
	assert.False(t, PlayerProfile{PlayerID: "p-9"}.Complete())
}
