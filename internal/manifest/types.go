// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package manifest handles dynamic identity service endpoint configuration.
package manifest

import (
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Manifest represents the endpoint configuration published by the identity service.
type Manifest struct {
	Version  int               `json:"version"`
	Identity IdentityEndpoints `json:"identity"`
	Device   DeviceEndpoints   `json:"device"`
	Notify   NotifyEndpoints   `json:"notify"`
}

// IdentityEndpoints contains the session REST API.
type IdentityEndpoints struct {
	Origin   string `json:"origin"`   // e.g., "https://id.playerauth.dev"
	Resume   string `json:"resume"`   // e.g., "/v1/session/resume"
	Exchange string `json:"exchange"` // e.g., "/v1/session/exchange"
	Profile  string `json:"profile"`  // e.g., "/v1/player/me"
}

// DeviceEndpoints describes the OAuth 2.0 device authorization grant of the
// interactive provider.
type DeviceEndpoints struct {
	ClientID     string   `json:"client_id"`
	AuthorizeURL string   `json:"device_authorization_url"`
	TokenURL     string   `json:"token_url"`
	Scopes       []string `json:"scopes"`
}

// NotifyEndpoints contains the push-notification origin. The scheme picks the
// transport: grpc, grpcs, ws or wss. Empty disables push notifications.
type NotifyEndpoints struct {
	Origin string `json:"origin"`
}

// IdentityBaseURL returns scheme://host of the identity origin without a trailing slash.
func (m *Manifest) IdentityBaseURL() string {
	u, err := url.Parse(m.Identity.Origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	base := u.Scheme + "://" + u.Host + u.Path
	return strings.TrimRight(base, "/")
}

// OAuth2Config builds the device-flow client configuration.
func (m *Manifest) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID: m.Device.ClientID,
		Scopes:   append([]string(nil), m.Device.Scopes...),
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: m.Device.AuthorizeURL,
			TokenURL:      m.Device.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func (m *Manifest) validate() []string {
	var missing []string
	if m.Version == 0 {
		missing = append(missing, "version")
	}
	if m.IdentityBaseURL() == "" {
		missing = append(missing, "identity.origin")
	}
	if m.Identity.Resume == "" {
		missing = append(missing, "identity.resume")
	}
	if m.Identity.Exchange == "" {
		missing = append(missing, "identity.exchange")
	}
	if m.Identity.Profile == "" {
		missing = append(missing, "identity.profile")
	}
	if m.Device.ClientID == "" {
		missing = append(missing, "device.client_id")
	}
	if m.Device.AuthorizeURL == "" {
		missing = append(missing, "device.device_authorization_url")
	}
	if m.Device.TokenURL == "" {
		missing = append(missing, "device.token_url")
	}
	return missing
}
