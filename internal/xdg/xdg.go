// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for playerauth.
//
// Config holds the non-secret settings file; Data holds the encrypted keyring
// when the file backend is selected. Both directories are private (0700).
package xdg

import (
	"os"
	"path/filepath"
)

// AppName is the directory name used under every XDG base.
const AppName = "playerauth"

// ConfigDir returns $XDG_CONFIG_HOME/playerauth, falling back to ~/.config/playerauth.
func ConfigDir() (string, error) {
	return appDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns $XDG_DATA_HOME/playerauth, falling back to ~/.local/share/playerauth.
func DataDir() (string, error) {
	return appDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// appDir creates the application directory under the base named by envVar, or
// under homeRel relative to the user's home when the variable is unset.
func appDir(envVar, homeRel string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, homeRel)
	}
	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
