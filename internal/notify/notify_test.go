// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package notify

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerauth/cli/internal/notify/grpcstream"
	"playerauth/cli/internal/notify/wsstream"
)

func TestNewPicksTransport(t *testing.T) {
	src, err := New("grpcs://push.example.test", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &grpcstream.Client{}, src)

	src, err = New("wss://push.example.test/v1/events", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &wsstream.Client{}, src)

	_, err = New("https://push.example.test", zerolog.Nop())
	assert.Error(t, err)
}
