// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/httperrors"
	"playerauth/cli/internal/logging"
	"playerauth/cli/internal/manifest"
)

// DefaultTimeout bounds every identity service request.
const DefaultTimeout = 10 * time.Second

// Client implements Service over the identity REST API.
type Client struct {
	baseURL   string
	endpoints manifest.IdentityEndpoints
	store     CredentialStore
	client    *http.Client
	userAgent string
	log       zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client for the identity service at baseURL. The store
// holds the resumable credential.
func NewClient(baseURL string, endpoints manifest.IdentityEndpoints, store CredentialStore, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		store:     store,
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: "playerauth-cli",
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sessionResponse struct {
	SessionToken string `json:"session_token"`
	Credential   string `json:"credential"`
}

// HasCachedCredential reports whether a resumable credential is stored locally.
func (c *Client) HasCachedCredential(ctx context.Context) (bool, error) {
	ok, err := c.store.HasCredential()
	if err != nil {
		return false, autherrors.Ensure(err, autherrors.Storage, "read cached credential")
	}
	return ok, nil
}

// ResumeWithCachedCredential trades the cached credential for a session token.
// A rotated credential in the response replaces the cached one.
func (c *Client) ResumeWithCachedCredential(ctx context.Context) (SessionToken, error) {
	cred, err := c.store.LoadCredential()
	if err != nil {
		return "", fmt.Errorf("resume: %w", autherrors.Ensure(err, autherrors.Storage, "read cached credential"))
	}

	var out sessionResponse
	if err := c.postJSON(ctx, "resume", c.endpoints.Resume, map[string]string{"credential": cred}, &out); err != nil {
		return "", err
	}
	if out.SessionToken == "" {
		return "", autherrors.New(autherrors.Transport, "no session_token in response").WithOp("resume")
	}
	if out.Credential != "" && out.Credential != cred {
		c.cacheCredential("resume", out.Credential)
	}
	return SessionToken(out.SessionToken), nil
}

// ExchangeProviderToken trades a provider access token for a session token and
// caches the credential returned with it.
func (c *Client) ExchangeProviderToken(ctx context.Context, providerToken string) (SessionToken, error) {
	if strings.TrimSpace(providerToken) == "" {
		return "", autherrors.New(autherrors.Auth, "empty provider token").WithOp("exchange")
	}
	var out sessionResponse
	if err := c.postJSON(ctx, "exchange", c.endpoints.Exchange, map[string]string{"provider_token": providerToken}, &out); err != nil {
		return "", err
	}
	if out.SessionToken == "" {
		return "", autherrors.New(autherrors.Transport, "no session_token in response").WithOp("exchange")
	}
	if out.Credential != "" {
		c.cacheCredential("exchange", out.Credential)
	}
	return SessionToken(out.SessionToken), nil
}

// FetchProfile calls the profile endpoint with the session token.
// Decoding is liberal about field names; completeness is the caller's concern.
func (c *Client) FetchProfile(ctx context.Context, token SessionToken) (ProfileData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+c.endpoints.Profile, nil)
	if err != nil {
		return ProfileData{}, autherrors.Wrap(autherrors.Transport, "build request", err).WithOp("profile")
	}
	c.setStandardHeaders(req)
	req.Header.Set("Authorization", "Bearer "+string(token))

	var raw map[string]any
	if err := c.do(req, "profile", &raw); err != nil {
		return ProfileData{}, err
	}
	return ProfileData{
		PlayerID:    firstString(raw, "player_id", "playerId", "id"),
		DisplayName: firstString(raw, "display_name", "displayName", "name"),
	}, nil
}

// ClearCachedCredential deletes the cached credential. It is local only.
func (c *Client) ClearCachedCredential(ctx context.Context) error {
	if err := c.store.ClearCredential(); err != nil {
		return autherrors.Ensure(err, autherrors.Storage, "remove cached credential")
	}
	return nil
}

// cacheCredential stores a credential issued by the service. A failure leaves
// the current session usable, so it is logged rather than returned.
func (c *Client) cacheCredential(op, cred string) {
	if err := c.store.SaveCredential(cred); err != nil {
		c.log.Warn().Str("op", op).Str("error", logging.Mask(err.Error())).Msg("could not cache credential; next start will need interactive sign-in")
	}
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return autherrors.Wrap(autherrors.Transport, "encode request", err).WithOp(op)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return autherrors.Wrap(autherrors.Transport, "build request", err).WithOp(op)
	}
	c.setStandardHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

// do sends req and decodes a 200 JSON answer into out, mapping every failure
// onto an error kind.
func (c *Client) do(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Str("op", op).Str("request_id", req.Header.Get("X-Request-ID")).
			Str("class", httperrors.Classify(err).String()).Msg("identity request failed")
		return autherrors.Wrap(autherrors.Transport, "identity service unreachable", err).WithOp(op)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("op", op).Str("request_id", req.Header.Get("X-Request-ID")).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("identity request")

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &httperrors.StatusError{Status: resp.StatusCode, Body: logging.Mask(strings.TrimSpace(string(b)))}
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return autherrors.Wrap(autherrors.Auth, "identity service rejected the request", se).WithOp(op)
		default:
			return autherrors.Wrap(autherrors.Transport, "identity service error", se).WithOp(op)
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return autherrors.Wrap(autherrors.Transport, "decode response", err).WithOp(op)
	}
	return nil
}

func (c *Client) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}
