// Copyright (c) 2025 PlayerAuth
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies network failures from the identity service and
// describes them in user-friendly terms.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// Class is a coarse category of network failure.
type Class int

const (
	Unknown Class = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Server
)

func (c Class) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case ConnectionRefused:
		return "connection_refused"
	case TLS:
		return "tls"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// Classify inspects err and returns the most specific class that matches.
func Classify(err error) Class {
	switch {
	case err == nil:
		return Unknown
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	case isServerError(err.Error()):
		return Server
	default:
		return Unknown
	}
}

// StatusError reports a non-2xx answer from an HTTP endpoint.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Status)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// IsServerStatus reports whether err is a StatusError with a 5xx code.
func IsServerStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

// Describe returns a short multi-line explanation of err suitable for the terminal.
// host names the service that was being contacted.
func Describe(err error, host string) string {
	if err == nil {
		return ""
	}
	if host == "" {
		host = "the identity service"
	}
	var lines []string
	switch Classify(err) {
	case Timeout:
		lines = []string{
			"⏱️  " + host + " took too long to respond.",
			"  • Slow internet connection",
			"  • Server is under heavy load",
			"  • Network firewall is blocking the connection",
		}
	case DNS:
		lines = []string{
			"🌐 Cannot resolve " + host + ".",
			"  • Check that your internet connection is working",
			"  • Check DNS settings and DNS-level blocking",
		}
	case ConnectionRefused:
		lines = []string{
			"🚫 " + host + " refused the connection.",
			"  • The service is temporarily down",
			"  • Wrong server address or port in the manifest",
		}
	case TLS:
		lines = []string{
			"🔒 Secure connection to " + host + " failed.",
			"  • Check your system date and time",
			"  • Verify network proxy settings",
		}
	case Server:
		lines = []string{
			"⚠️  " + host + " encountered an internal error.",
			"  • This is not a problem with your setup",
			"  • Please try again in a few minutes",
		}
	default:
		lines = []string{
			"❌ Cannot talk to " + host + ".",
			"  • Check your internet connection",
			"  • Check firewall settings that might block HTTPS",
		}
	}
	return strings.Join(lines, "\n")
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// isServerError checks if the error indicates a server-side problem (5xx errors).
func isServerError(errStr string) bool {
	lower := strings.ToLower(errStr)
	for _, s := range []string{"status 500", "status 502", "status 503", "status 504",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
