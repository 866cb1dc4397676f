// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the resumable credential goes to the OS keychain.
//
// Environment variables override the file so CI and scripted runs do not need
// to write a config first.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"playerauth/cli/internal/xdg"
)

const (
	envLogLevel      = "PLAYERAUTH_LOG_LEVEL"
	envManifestURL   = "PLAYERAUTH_MANIFEST_URL"
	envSignInTimeout = "PLAYERAUTH_SIGN_IN_TIMEOUT"
	envVerbose       = "PLAYERAUTH_VERBOSE"
)

// DefaultManifestURL is where endpoint discovery happens when nothing else is configured.
const DefaultManifestURL = "https://id.playerauth.dev/cli-endpoints.json"

// DefaultSignInTimeoutSeconds bounds the interactive flow; 0 disables the bound.
const DefaultSignInTimeoutSeconds = 300

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel             string        `json:"log_level"`
	ManifestURL          string        `json:"manifest_url"`
	ManifestPublicKey    string        `json:"manifest_public_key,omitempty"`
	SignInTimeoutSeconds int           `json:"sign_in_timeout_seconds"`
	OpenBrowser          bool          `json:"open_browser"`
	Keyring              KeyringConfig `json:"keyring"`
}

// KeyringConfig selects the credential cache backend.
type KeyringConfig struct {
	// Backends restricts the keyring backends, in order of preference.
	// Empty means the platform default list.
	Backends []string `json:"backends,omitempty"`
	// FileDir is used by the "file" backend; empty means the XDG data dir.
	FileDir string `json:"file_dir,omitempty"`
}

// SignInTimeout returns the configured interactive sign-in bound.
func (c Config) SignInTimeout() time.Duration {
	if c.SignInTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SignInTimeoutSeconds) * time.Second
}

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		LogLevel:             "info",
		ManifestURL:          DefaultManifestURL,
		SignInTimeoutSeconds: DefaultSignInTimeoutSeconds,
		OpenBrowser:          true,
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file returns defaults. Environment
// overrides are applied in both cases.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, err
		}
	}
	applyEnv(&c)
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func applyEnv(c *Config) {
	c.LogLevel = GetEnv(envLogLevel, c.LogLevel)
	c.ManifestURL = GetEnv(envManifestURL, c.ManifestURL)
	if v := os.Getenv(envSignInTimeout); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			c.SignInTimeoutSeconds = secs
		}
	}
	if Verbose() {
		c.LogLevel = "debug"
	}
}

// Verbose reports whether PLAYERAUTH_VERBOSE=1 is set.
func Verbose() bool {
	return os.Getenv(envVerbose) == "1"
}

// SetVerbose turns verbose mode on for this process and anything it reads config from.
func SetVerbose() {
	_ = os.Setenv(envVerbose, "1")
}

// GetEnv returns the value of envVar, or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
