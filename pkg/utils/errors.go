package utils

import (
	"context"
	"errors"
	"net"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrInvalidURL       = errors.New("URL is not an absolute http/https URL")
	ErrRequestCreation  = errors.New("failed to create HTTP request")
	ErrResponseBodyRead = errors.New("failed to read response body")
	ErrTooManyRedirects = errors.New("stopped after 10 redirects")
	ErrDatabase         = errors.New("database operation failed")
	ErrSerialization    = errors.New("serialization failed")
)

// CategorizeError maps an error from a fetch attempt to a stable kind string
// for tagging batch output and logging. Unrecognized errors fall through to
// "NetworkOther" / "Unknown".
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	// Check against sentinel errors first
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "InvalidURL"
	case errors.Is(err, ErrRequestCreation):
		return "RequestCreation"
	case errors.Is(err, ErrResponseBodyRead):
		return "BodyRead"
	case errors.Is(err, ErrTooManyRedirects):
		return "RedirectLoop"
	}

	// Context errors
	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timeout"
	}

	// Network errors
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNSLookup"
	}

	// Use lowercase for reliable substring checks
	lowerErrMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lowerErrMsg, "timeout") || strings.Contains(lowerErrMsg, "deadline exceeded"):
		return "Timeout"
	case strings.Contains(lowerErrMsg, "no such host"):
		return "DNSLookup"
	case strings.Contains(lowerErrMsg, "connection refused"):
		return "ConnectionRefused"
	case strings.Contains(lowerErrMsg, "tls") || strings.Contains(lowerErrMsg, "certificate") || strings.Contains(lowerErrMsg, "handshake"):
		return "TLSHandshake"
	case strings.Contains(lowerErrMsg, "reset by peer"):
		return "ConnectionReset"
	case strings.Contains(lowerErrMsg, "broken pipe"):
		return "BrokenPipe"
	case strings.Contains(lowerErrMsg, "redirect"):
		return "RedirectLoop"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "NetworkOther"
	}

	return "Unknown"
}
