// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestInlineSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	stop := startInlineSpinner(&out, "Waiting", []string{"|", "/"}, time.Millisecond)

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "/ Waiting")
	}, time.Second, time.Millisecond)
	stop()
	stop()

	s := out.String()
	assert.True(t, strings.HasSuffix(s, "\r"), "line should be cleared on stop")
	after := len(s)
	time.Sleep(5 * time.Millisecond)
	assert.Len(t, out.String(), after)
}
