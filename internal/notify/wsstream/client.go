// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package wsstream receives session notices as JSON frames over a WebSocket.
package wsstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
)

// closeGrace bounds the close handshake write when the watcher is cancelled.
const closeGrace = time.Second

// Frame is the wire shape of a notice.
type Frame struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
}

// Client opens the notification WebSocket.
type Client struct {
	url    string
	dialer *websocket.Dialer
	log    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// New validates a ws:// or wss:// origin.
func New(origin string, opts ...Option) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin %q has no host", origin)
	}
	c := &Client{url: origin, dialer: websocket.DefaultDialer, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Watch dials the socket with the session token as a bearer credential.
func (c *Client) Watch(ctx context.Context, token identity.SessionToken) (<-chan identity.Notice, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+string(token))

	conn, resp, err := c.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, autherrors.Wrap(autherrors.Auth, "notify stream rejected the session", err).WithOp("watch")
		}
		return nil, autherrors.Wrap(autherrors.Transport, "open notify stream", err).WithOp("watch")
	}

	out := make(chan identity.Notice, 8)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeGrace))
			_ = conn.Close()
		case <-done:
		}
	}()
	go c.readLoop(ctx, conn, out, done)
	return out, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- identity.Notice, done chan struct{}) {
	defer close(out)
	defer close(done)
	defer conn.Close()

	send := func(n identity.Notice) bool {
		select {
		case out <- n:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if ctx.Err() != nil {
				return
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && (ce.Code == websocket.CloseNormalClosure || ce.Code == websocket.CloseGoingAway) {
				send(identity.Notice{Kind: identity.NoticeStreamClosed, Reason: "stream closed"})
				return
			}
			c.log.Debug().Err(err).Msg("notify socket failed")
			send(identity.Notice{Kind: identity.NoticeStreamError, Reason: err.Error()})
			return
		}
		if f.Type == "" {
			continue
		}
		if !send(identity.Notice{Kind: identity.NoticeKind(f.Type), Reason: f.Reason}) {
			return
		}
	}
}
