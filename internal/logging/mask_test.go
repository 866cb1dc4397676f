// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Bearer header",
			input:    "Authorization: Bearer st_abc.def-123",
			expected: "Authorization: Bearer ***",
		},
		{
			name:     "Session token pair",
			input:    "resume failed session_token=st_42 status=500",
			expected: "resume failed session_token=*** status=500",
		},
		{
			name:     "Credential in query",
			input:    "GET /v1/session?credential=cr_9&x=1",
			expected: "GET /v1/session?credential=***&x=1",
		},
		{
			name:     "JSON body",
			input:    `{"credential":"cr_secret","session_token": "st_secret"}`,
			expected: `{"credential":"***","session_token": "***"}`,
		},
		{
			name:     "Provider token",
			input:    "provider_token=ya29.a0",
			expected: "provider_token=***",
		},
		{
			name:     "Nothing secret",
			input:    "dial tcp 127.0.0.1:443: connection refused",
			expected: "dial tcp 127.0.0.1:443: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Mask(tt.input))
		})
	}
}
