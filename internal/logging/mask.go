// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI logger and helpers for secure error presentation.
// Session tokens, resumable credentials and provider tokens must never reach a log
// line or the terminal unmasked; everything printed from an error goes through Mask.
package logging

import (
	"regexp"
)

var (
	reBearer   = regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reKeyValue = regexp.MustCompile(`(?i)((?:session_token|provider_token|access_token|refresh_token|credential|device_code|token)=)([^\s&;]+)`)
	reJSON     = regexp.MustCompile(`(?i)("(?:session_token|provider_token|access_token|refresh_token|credential|device_code)"\s*:\s*")([^"]*)(")`)
)

// Mask replaces secret values in s with "***".
func Mask(s string) string {
	out := reBearer.ReplaceAllString(s, "$1***")
	out = reKeyValue.ReplaceAllString(out, "$1***")
	out = reJSON.ReplaceAllString(out, "$1***$3")
	return out
}
