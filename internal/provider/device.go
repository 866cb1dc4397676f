// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provider

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	autherrors "playerauth/cli/internal/errors"
)

// Prompt shows the verification link and user code to the player.
type Prompt func(verificationURI, userCode string)

// DeviceFlow implements Provider with the OAuth 2.0 device authorization grant.
type DeviceFlow struct {
	cfg    *oauth2.Config
	prompt Prompt
	open   func(string) error
	hc     *http.Client
	log    zerolog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures a DeviceFlow.
type Option func(*DeviceFlow)

// WithBrowser opens the verification link with opener after prompting.
func WithBrowser(opener func(string) error) Option {
	return func(d *DeviceFlow) { d.open = opener }
}

// WithHTTPClient sets the client used to talk to the authorization server.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *DeviceFlow) { d.hc = hc }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *DeviceFlow) { d.log = l }
}

// NewDeviceFlow returns a device-flow provider for cfg.
func NewDeviceFlow(cfg *oauth2.Config, prompt Prompt, opts ...Option) *DeviceFlow {
	d := &DeviceFlow{cfg: cfg, prompt: prompt, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SignIn requests a device code, shows it and polls until the player approves,
// denies, the code expires or ctx ends.
func (d *DeviceFlow) SignIn(ctx context.Context) (string, error) {
	if d.hc != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, d.hc)
	}

	da, err := d.cfg.DeviceAuth(ctx)
	if err != nil {
		return "", classify(ctx, err, "device authorization request failed")
	}

	link := da.VerificationURIComplete
	if link == "" {
		link = da.VerificationURI
	}
	if d.prompt != nil {
		d.prompt(link, da.UserCode)
	}
	if d.open != nil {
		if err := d.open(link); err != nil {
			d.log.Debug().Err(err).Msg("could not open browser")
		}
	}

	tok, err := d.cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return "", classify(ctx, err, "device sign-in did not complete")
	}
	if tok.AccessToken == "" {
		return "", autherrors.New(autherrors.Auth, "provider returned an empty access token").WithOp("interactive_sign_in")
	}

	d.mu.Lock()
	d.token = tok
	d.mu.Unlock()
	return tok.AccessToken, nil
}

// SignOut drops the provider token held in memory.
func (d *DeviceFlow) SignOut() {
	d.mu.Lock()
	d.token = nil
	d.mu.Unlock()
}

// SignedIn reports whether a provider token is held.
func (d *DeviceFlow) SignedIn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token != nil
}

func classify(ctx context.Context, err error, msg string) error {
	var re *oauth2.RetrieveError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return autherrors.Wrap(autherrors.Timeout, "sign-in timed out", err).WithOp("interactive_sign_in")
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return autherrors.Wrap(autherrors.Auth, "sign-in cancelled", err).WithOp("interactive_sign_in")
	case errors.As(err, &re):
		if re.Response != nil && re.Response.StatusCode >= 500 {
			return autherrors.Wrap(autherrors.Transport, msg, err).WithOp("interactive_sign_in")
		}
		return autherrors.Wrap(autherrors.Auth, msg, err).WithOp("interactive_sign_in")
	default:
		return autherrors.Wrap(autherrors.Transport, msg, err).WithOp("interactive_sign_in")
	}
}
