// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain caches the resumable session credential in the OS keychain.
//
// The credential is the only secret playerauth persists. Session tokens live in
// memory for the life of the process and are never written here.
package keychain

import (
	"errors"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/99designs/keyring"

	"playerauth/cli/internal/config"
	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/xdg"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "playerauth"

// KeyCredential is the keychain item holding the resumable credential.
const KeyCredential = "session_credential"

const envFilePassword = "PLAYERAUTH_KEYRING_PASSWORD"

// Manager provides thread-safe access to the cached credential.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// Open opens the keyring selected by cfg. With no explicit backends the native
// store of the current OS is preferred and the encrypted file backend is the
// last resort.
func Open(cfg config.KeyringConfig) (*Manager, error) {
	backends, err := parseBackends(cfg.Backends)
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		backends = defaultBackends()
	}

	fileDir := cfg.FileDir
	if fileDir == "" {
		dir, err := xdg.DataDir()
		if err != nil {
			return nil, autherrors.Wrap(autherrors.Storage, "cannot resolve keyring directory", err)
		}
		fileDir = dir
	}

	kc := keyring.Config{
		ServiceName:      ServiceName,
		AllowedBackends:  backends,
		PassPrefix:       ServiceName,
		WinCredPrefix:    ServiceName,
		KeychainName:     "login",
		FileDir:          fileDir,
		FilePasswordFunc: filePassword(),
	}
	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, autherrors.Wrap(autherrors.Storage, "no usable keyring backend", err)
	}
	return NewManagerWithRing(ring), nil
}

func defaultBackends() []keyring.BackendType {
	switch runtime.GOOS {
	case "darwin":
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend, keyring.FileBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend, keyring.FileBackend}
	default:
		return []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.KeyCtlBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		}
	}
}

func parseBackends(names []string) ([]keyring.BackendType, error) {
	known := map[string]keyring.BackendType{
		string(keyring.KeychainBackend):      keyring.KeychainBackend,
		string(keyring.WinCredBackend):       keyring.WinCredBackend,
		string(keyring.SecretServiceBackend): keyring.SecretServiceBackend,
		string(keyring.KWalletBackend):       keyring.KWalletBackend,
		string(keyring.KeyCtlBackend):        keyring.KeyCtlBackend,
		string(keyring.PassBackend):          keyring.PassBackend,
		string(keyring.FileBackend):          keyring.FileBackend,
	}
	out := make([]keyring.BackendType, 0, len(names))
	for _, n := range names {
		b, ok := known[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, autherrors.New(autherrors.Storage, "unknown keyring backend "+n)
		}
		out = append(out, b)
	}
	return out, nil
}

func filePassword() keyring.PromptFunc {
	if pw := os.Getenv(envFilePassword); pw != "" {
		return keyring.FixedStringPrompt(pw)
	}
	return keyring.TerminalPrompt
}

// HasCredential reports whether a non-empty credential is cached.
// A missing item is not an error.
func (m *Manager) HasCredential() (bool, error) {
	_, err := m.LoadCredential()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, keyring.ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// LoadCredential returns the cached credential. A missing or empty item yields
// an error wrapping keyring.ErrKeyNotFound.
func (m *Manager) LoadCredential() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyCredential)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", autherrors.Wrap(autherrors.Storage, "no cached credential", keyring.ErrKeyNotFound)
	}
	if err != nil {
		return "", autherrors.Wrap(autherrors.Storage, "read cached credential", err)
	}
	if len(it.Data) == 0 {
		return "", autherrors.Wrap(autherrors.Storage, "empty cached credential", keyring.ErrKeyNotFound)
	}
	return string(it.Data), nil
}

// SaveCredential replaces the cached credential.
func (m *Manager) SaveCredential(credential string) error {
	if credential == "" {
		return autherrors.New(autherrors.Storage, "refusing to cache an empty credential")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.ring.Set(keyring.Item{
		Key:         KeyCredential,
		Data:        []byte(credential),
		Label:       "playerauth session credential",
		Description: "Resumable credential for the playerauth CLI",
	})
	if err != nil {
		return autherrors.Wrap(autherrors.Storage, "write cached credential", err)
	}
	return nil
}

// ClearCredential removes the cached credential. Removing a missing item succeeds.
func (m *Manager) ClearCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ring.Remove(KeyCredential); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return autherrors.Wrap(autherrors.Storage, "remove cached credential", err)
	}
	return nil
}
