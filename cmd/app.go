// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"playerauth/cli/internal/config"
	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
	"playerauth/cli/internal/keychain"
	"playerauth/cli/internal/logging"
	"playerauth/cli/internal/manifest"
	"playerauth/cli/internal/provider"
	"playerauth/cli/internal/session"
	"playerauth/cli/internal/terminal"
	"playerauth/cli/internal/view"
)

// app is everything one command invocation needs.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	manifest *manifest.Manifest
	console  *view.Console
	mgr      *session.Manager

	stopSpinner func()

	mu      sync.Mutex
	lastErr error
}

func manifestSource(cfg config.Config) manifest.Source {
	return manifest.Source{
		URL:          cfg.ManifestURL,
		PublicKeyPEM: cfg.ManifestPublicKey,
		UserAgent:    userAgent(),
	}
}

// newApp loads configuration, discovers the endpoints, opens the keychain and
// wires the session manager to the console.
func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	m, err := manifest.GetEndpoints(ctx, manifestSource(cfg))
	if err != nil {
		return nil, err
	}
	store, err := keychain.Open(cfg.Keyring)
	if err != nil {
		return nil, err
	}
	client := identity.NewClient(m.IdentityBaseURL(), m.Identity, store,
		identity.WithUserAgent(userAgent()),
		identity.WithLogger(log.With().Str("component", "identity").Logger()),
	)

	a := &app{cfg: cfg, log: log, manifest: m, console: view.NewConsole(out)}

	opts := []provider.Option{provider.WithLogger(log.With().Str("component", "device_flow").Logger())}
	if cfg.OpenBrowser {
		opts = append(opts, provider.WithBrowser(provider.OpenBrowser))
	}
	prov := provider.NewDeviceFlow(m.OAuth2Config(), a.showDeviceCode, opts...)

	a.mgr = session.NewManager(client, prov,
		session.WithLogger(log.With().Str("component", "session").Logger()),
		session.WithSignInTimeout(cfg.SignInTimeout()),
	)
	a.mgr.Subscribe(a.recordError)
	a.console.Attach(a.mgr)
	return a, nil
}

func (a *app) showDeviceCode(uri, code string) {
	a.console.ShowDeviceCode(uri, code)
	if terminal.IsInteractive(os.Stderr) {
		a.stopSpinner = startInlineSpinner(os.Stderr, "Waiting for you to approve the sign-in", spinnerFrames, spinnerInterval)
	}
}

func (a *app) recordError(ev session.Event) {
	if ev.Type != session.EventError {
		return
	}
	a.mu.Lock()
	a.lastErr = ev.Err
	a.mu.Unlock()
}

// failure returns the last reported error once every event so far has been delivered.
func (a *app) failure() error {
	a.mgr.Flush()
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

func (a *app) resetFailure() {
	a.mgr.Flush()
	a.mu.Lock()
	a.lastErr = nil
	a.mu.Unlock()
}

// resume tries the cached credential and reports whether a session is active.
func (a *app) resume(ctx context.Context) (bool, error) {
	a.mgr.Start(ctx)
	if a.mgr.State() == session.SignedIn {
		return true, nil
	}
	return false, a.failure()
}

// signIn resumes when possible and falls back to the interactive flow.
func (a *app) signIn(ctx context.Context) error {
	ok, err := a.resume(ctx)
	if ok {
		return nil
	}
	if err != nil && autherrors.KindOf(err) != autherrors.Auth {
		return err
	}
	if err != nil {
		a.log.Info().Msg("cached credential rejected; starting interactive sign-in")
	}

	a.mgr.BeginInteractiveSignIn(ctx)
	if a.stopSpinner != nil {
		a.stopSpinner()
		a.stopSpinner = nil
	}
	if a.mgr.State() == session.SignedIn {
		return nil
	}
	return a.failure()
}

func (a *app) close() {
	if a.stopSpinner != nil {
		a.stopSpinner()
	}
	a.mgr.Close()
}
