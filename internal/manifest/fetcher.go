// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

package manifest

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"playerauth/cli/internal/httperrors"
)

// SignatureHeader carries the base64 RSA-SHA256 signature of the manifest body.
const SignatureHeader = "X-Manifest-Signature"

// Source says where to fetch the manifest from and how to check it.
type Source struct {
	URL string
	// PublicKeyPEM, when set, makes a valid signature mandatory.
	PublicKeyPEM string
	UserAgent    string
	HTTPClient   *http.Client
}

// fetchFromServer retrieves the manifest with optional signature verification.
func fetchFromServer(ctx context.Context, src Source) (*Manifest, error) {
	client := src.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	ua := src.UserAgent
	if ua == "" {
		ua = "playerauth-cli"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httperrors.StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if src.PublicKeyPEM != "" {
		sig := resp.Header.Get(SignatureHeader)
		if sig == "" {
			return nil, fmt.Errorf("signature verification failed: missing %s header", SignatureHeader)
		}
		if err := verifySignature(body, sig, src.PublicKeyPEM); err != nil {
			return nil, fmt.Errorf("signature verification failed: %w", err)
		}
	}

	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parse manifest JSON: %w", err)
	}
	if missing := m.validate(); len(missing) > 0 {
		return nil, fmt.Errorf("invalid manifest: missing %s", strings.Join(missing, ", "))
	}
	return &m, nil
}

// verifySignature validates the RSA-SHA256 signature of the manifest.
func verifySignature(body []byte, signatureB64, publicKeyPEM string) error {
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return fmt.Errorf("failed to parse PEM block")
	}
	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return fmt.Errorf("parse public key: %w", err)
	}
	rsaPubKey, ok := pubKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("not an RSA public key")
	}

	hash := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(rsaPubKey, crypto.SHA256, hash[:], sig); err != nil {
		return fmt.Errorf("signature mismatch: %w", err)
	}
	return nil
}
