// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package notify opens the server-push notification stream for a session.
// The transport is chosen from the origin scheme published in the manifest,
// so the session core only ever sees a channel of identity.Notice values.
package notify

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	"playerauth/cli/internal/identity"
	"playerauth/cli/internal/notify/grpcstream"
	"playerauth/cli/internal/notify/wsstream"
)

// Source delivers server-initiated notices for one session token. The channel
// ends with a stream_closed or stream_error notice and is then closed.
type Source interface {
	Watch(ctx context.Context, token identity.SessionToken) (<-chan identity.Notice, error)
}

// New creates a Source for origin. Supported schemes: grpc, grpcs, ws, wss.
func New(origin string, log zerolog.Logger) (Source, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse notify origin: %w", err)
	}
	switch u.Scheme {
	case "grpc", "grpcs":
		return grpcstream.New(origin, grpcstream.WithLogger(log))
	case "ws", "wss":
		return wsstream.New(origin, wsstream.WithLogger(log))
	default:
		return nil, fmt.Errorf("unsupported notify scheme %q", u.Scheme)
	}
}
