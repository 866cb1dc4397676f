// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	autherrors "playerauth/cli/internal/errors"
)

// deviceServer answers the device authorization request and then replies to
// token polls with the given sequence of outcomes; the last one repeats.
func deviceServer(t *testing.T, outcomes ...string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /device", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "cli", r.Form.Get("client_id"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"device_code":               "dev-1",
			"user_code":                 "ABCD-EFGH",
			"verification_uri":          "https://id.example.test/activate",
			"verification_uri_complete": "https://id.example.test/activate?code=ABCD-EFGH",
			"expires_in":                60,
			"interval":                  1,
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&polls, 1)) - 1
		if n >= len(outcomes) {
			n = len(outcomes) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		switch outcomes[n] {
		case "ok":
			_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "pt-1", "token_type": "Bearer"})
		default:
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": outcomes[n]})
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &polls
}

func flowFor(srv *httptest.Server, prompt Prompt, opts ...Option) *DeviceFlow {
	cfg := &oauth2.Config{
		ClientID: "cli",
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: srv.URL + "/device",
			TokenURL:      srv.URL + "/token",
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
	return NewDeviceFlow(cfg, prompt, append(opts, WithHTTPClient(srv.Client()))...)
}

func TestDeviceFlowSuccess(t *testing.T) {
	srv, polls := deviceServer(t, "authorization_pending", "ok")

	var shownURI, shownCode, opened string
	flow := flowFor(srv, func(uri, code string) {
		shownURI, shownCode = uri, code
	}, WithBrowser(func(u string) error {
		opened = u
		return nil
	}))

	tok, err := flow.SignIn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pt-1", tok)
	assert.Equal(t, "https://id.example.test/activate?code=ABCD-EFGH", shownURI)
	assert.Equal(t, "ABCD-EFGH", shownCode)
	assert.Equal(t, shownURI, opened)
	assert.EqualValues(t, 2, atomic.LoadInt32(polls))
	assert.True(t, flow.SignedIn())

	flow.SignOut()
	assert.False(t, flow.SignedIn())
}

func TestDeviceFlowDenied(t *testing.T) {
	srv, _ := deviceServer(t, "access_denied")

	_, err := flowFor(srv, nil).SignIn(context.Background())
	require.Error(t, err)
	assert.True(t, autherrors.Is(err, autherrors.Auth))
}

func TestDeviceFlowDeadline(t *testing.T) {
	srv, _ := deviceServer(t, "authorization_pending")

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	_, err := flowFor(srv, nil).SignIn(ctx)
	require.Error(t, err)
	assert.True(t, autherrors.Is(err, autherrors.Timeout))
}

func TestDeviceFlowUnreachable(t *testing.T) {
	srv, _ := deviceServer(t, "ok")
	flow := flowFor(srv, nil)
	srv.Close()

	_, err := flow.SignIn(context.Background())
	require.Error(t, err)
	assert.True(t, autherrors.Is(err, autherrors.Transport))
}
