// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Unknown},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), Timeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "id.example.test"}, DNS},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, ConnectionRefused},
		{"tls", errors.New("x509: certificate signed by unknown authority"), TLS},
		{"server status", &StatusError{Status: 503}, Server},
		{"other", errors.New("unexpected EOF"), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestIsServerStatus(t *testing.T) {
	assert.True(t, IsServerStatus(fmt.Errorf("wrapped: %w", &StatusError{Status: 500})))
	assert.False(t, IsServerStatus(&StatusError{Status: 401}))
	assert.False(t, IsServerStatus(errors.New("plain")))
}

func TestDescribeNamesHost(t *testing.T) {
	out := Describe(&StatusError{Status: 502}, "id.example.test")
	assert.Contains(t, out, "id.example.test encountered an internal error")

	assert.Contains(t, Describe(errors.New("boom"), ""), "the identity service")
	assert.Empty(t, Describe(nil, "x"))
}

func TestExtractHostFromURL(t *testing.T) {
	assert.Equal(t, "id.example.test:8443", ExtractHostFromURL("https://id.example.test:8443/v1"))
	assert.Equal(t, "server", ExtractHostFromURL("::bad"))
}
