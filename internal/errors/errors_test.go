// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{
			name: "message only",
			err:  New(Auth, "credentials rejected"),
			want: "auth: credentials rejected",
		},
		{
			name: "with cause",
			err:  Wrap(Transport, "identity service unreachable", stderrors.New("dial tcp: refused")),
			want: "transport: identity service unreachable: dial tcp: refused",
		},
		{
			name: "with op",
			err:  New(ProfileLoad, "incomplete profile").WithOp("resume"),
			want: "resume: profile_load: incomplete profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOfWalksChain(t *testing.T) {
	inner := Wrap(Storage, "keychain locked", stderrors.New("denied"))
	outer := fmt.Errorf("clear credential: %w", inner)

	assert.Equal(t, Storage, KindOf(outer))
	assert.True(t, Is(outer, Storage))
	assert.False(t, Is(outer, Auth))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	assert.False(t, Is(nil, Storage))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(New(Transport, "x")))
	assert.True(t, Retryable(New(Timeout, "x")))
	assert.False(t, Retryable(New(Auth, "x")))
	assert.False(t, Retryable(New(ProfileLoad, "x")))
	assert.False(t, Retryable(stderrors.New("plain")))
}

func TestEnsure(t *testing.T) {
	require.NoError(t, Ensure(nil, Transport, "unused"))

	typed := New(Auth, "denied")
	assert.Same(t, typed, Ensure(typed, Transport, "unused"))

	plain := stderrors.New("boom")
	wrapped := Ensure(plain, Transport, "call failed")
	assert.True(t, Is(wrapped, Transport))
	assert.ErrorIs(t, wrapped, plain)
}
