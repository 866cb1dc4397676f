// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerauth/cli/internal/config"
	autherrors "playerauth/cli/internal/errors"
)

func TestCredentialLifecycle(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	has, err := m.HasCredential()
	require.NoError(t, err)
	assert.False(t, has)

	_, err = m.LoadCredential()
	require.Error(t, err)
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
	assert.True(t, autherrors.Is(err, autherrors.Storage))

	require.NoError(t, m.SaveCredential("cr_1"))
	has, err = m.HasCredential()
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, m.SaveCredential("cr_2"))
	got, err := m.LoadCredential()
	require.NoError(t, err)
	assert.Equal(t, "cr_2", got)

	require.NoError(t, m.ClearCredential())
	has, err = m.HasCredential()
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, m.ClearCredential(), "clearing twice is fine")
}

func TestEmptyItemCountsAsMissing(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring([]keyring.Item{{Key: KeyCredential}}))

	has, err := m.HasCredential()
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSaveRejectsEmpty(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))
	err := m.SaveCredential("")
	assert.True(t, autherrors.Is(err, autherrors.Storage))
}

func TestParseBackends(t *testing.T) {
	got, err := parseBackends([]string{"File", " keychain "})
	require.NoError(t, err)
	assert.Equal(t, []keyring.BackendType{keyring.FileBackend, keyring.KeychainBackend}, got)

	_, err = parseBackends([]string{"floppy"})
	assert.True(t, autherrors.Is(err, autherrors.Storage))
}

func TestOpenFileBackend(t *testing.T) {
	t.Setenv(envFilePassword, "test-passphrase")
	dir := t.TempDir()

	m, err := Open(config.KeyringConfig{Backends: []string{"file"}, FileDir: dir})
	require.NoError(t, err)

	require.NoError(t, m.SaveCredential("cr_file"))
	got, err := m.LoadCredential()
	require.NoError(t, err)
	assert.Equal(t, "cr_file", got)

	require.NoError(t, m.ClearCredential())
	has, err := m.HasCredential()
	require.NoError(t, err)
	assert.False(t, has)
}
