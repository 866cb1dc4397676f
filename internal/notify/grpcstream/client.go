// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcstream receives session notices over a gRPC server stream.
//
// Messages are google.protobuf.Struct values, so no generated stubs are needed:
// the request is {"session_token": "..."} and each event is {"type", "reason"}.
package grpcstream

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	autherrors "playerauth/cli/internal/errors"
	"playerauth/cli/internal/identity"
)

// WatchMethod is the full name of the server-streaming RPC.
const WatchMethod = "/playerauth.SessionEvents/Watch"

// Client opens the notification stream.
type Client struct {
	target   string
	creds    credentials.TransportCredentials
	dialOpts []grpc.DialOption
	log      zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithContextDialer routes connections through d, bypassing name resolution.
func WithContextDialer(d func(context.Context, string) (net.Conn, error)) Option {
	return func(c *Client) {
		c.dialOpts = append(c.dialOpts, grpc.WithContextDialer(d))
		c.target = "passthrough:///" + c.target
	}
}

// New parses a grpc:// or grpcs:// origin. grpcs uses TLS and defaults to port 443.
func New(origin string, opts ...Option) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse origin: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin %q has no host", origin)
	}

	c := &Client{log: zerolog.Nop()}
	switch u.Scheme {
	case "grpcs":
		c.target = withDefaultPort(u.Host, "443")
		c.creds = credentials.NewTLS(&tls.Config{ServerName: u.Hostname(), MinVersion: tls.VersionTLS12})
	case "grpc":
		c.target = withDefaultPort(u.Host, "80")
		c.creds = insecure.NewCredentials()
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, port)
}

// Watch opens the stream for token. Setup failures are returned; everything
// after that arrives on the channel.
func (c *Client) Watch(ctx context.Context, token identity.SessionToken) (<-chan identity.Notice, error) {
	conn, err := grpc.NewClient(c.target, append([]grpc.DialOption{grpc.WithTransportCredentials(c.creds)}, c.dialOpts...)...)
	if err != nil {
		return nil, autherrors.Wrap(autherrors.Transport, "create notify client", err).WithOp("watch")
	}

	sctx := metadata.NewOutgoingContext(ctx, metadata.Pairs("authorization", "Bearer "+string(token)))
	cs, err := conn.NewStream(sctx, &grpc.StreamDesc{ServerStreams: true}, WatchMethod)
	if err != nil {
		_ = conn.Close()
		return nil, autherrors.Wrap(autherrors.Transport, "open notify stream", err).WithOp("watch")
	}
	stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}

	req, err := structpb.NewStruct(map[string]any{"session_token": string(token)})
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := stream.Send(req); err != nil {
		_ = conn.Close()
		return nil, autherrors.Wrap(autherrors.Transport, "send watch request", err).WithOp("watch")
	}
	if err := stream.CloseSend(); err != nil {
		_ = conn.Close()
		return nil, autherrors.Wrap(autherrors.Transport, "send watch request", err).WithOp("watch")
	}

	out := make(chan identity.Notice, 8)
	go c.receiveLoop(ctx, conn, stream, out)
	return out, nil
}

func (c *Client) receiveLoop(ctx context.Context, conn *grpc.ClientConn, stream *grpc.GenericClientStream[structpb.Struct, structpb.Struct], out chan<- identity.Notice) {
	defer close(out)
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
		msg, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Differentiate normal close vs error
			if errors.Is(err, io.EOF) {
				send(identity.Notice{Kind: identity.NoticeStreamClosed, Reason: "stream closed"})
				return
			}
			reason := err.Error()
			if st, ok := status.FromError(err); ok {
				if st.Code() == codes.Canceled {
					send(identity.Notice{Kind: identity.NoticeStreamClosed, Reason: "stream closed"})
					return
				}
				reason = st.Code().String() + ": " + st.Message()
			}
			c.log.Debug().Str("reason", reason).Msg("notify stream failed")
			send(identity.Notice{Kind: identity.NoticeStreamError, Reason: reason})
			return
		}
		kind := identity.NoticeKind(msg.GetFields()["type"].GetStringValue())
		if kind == "" {
			continue
		}
		if !send(identity.Notice{Kind: kind, Reason: msg.GetFields()["reason"].GetStringValue()}) {
			return
		}
	}
}
