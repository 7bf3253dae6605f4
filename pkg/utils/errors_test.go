package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "None"},
		{"invalid URL sentinel", ErrInvalidURL, "InvalidURL"},
		{"wrapped invalid URL", fmt.Errorf("%w: ftp://x", ErrInvalidURL), "InvalidURL"},
		{"request creation", ErrRequestCreation, "RequestCreation"},
		{"body read", fmt.Errorf("%w: unexpected EOF", ErrResponseBodyRead), "BodyRead"},
		{"redirect sentinel", ErrTooManyRedirects, "RedirectLoop"},
		{"context canceled", context.Canceled, "Canceled"},
		{"context deadline", context.DeadlineExceeded, "Timeout"},
		{"dns error", &net.DNSError{Err: "no such host", Name: "nope.invalid"}, "DNSLookup"},
		{"refused by message", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), "ConnectionRefused"},
		{"tls by message", errors.New("tls: handshake failure"), "TLSHandshake"},
		{"certificate by message", errors.New("x509: certificate signed by unknown authority"), "TLSHandshake"},
		{"reset by message", errors.New("read: connection reset by peer"), "ConnectionReset"},
		{"broken pipe", errors.New("write: broken pipe"), "BrokenPipe"},
		{"timeout by message", errors.New("net/http: request canceled (Client.Timeout exceeded while awaiting headers)"), "Timeout"},
		{"unknown", errors.New("something else entirely"), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategorizeError_WrappedChains(t *testing.T) {
	// Sentinels must survive multiple wrapping layers
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrTooManyRedirects))
	if got := CategorizeError(err); got != "RedirectLoop" {
		t.Errorf("deeply wrapped sentinel categorized as %q, want RedirectLoop", got)
	}
}

func TestCategorizeError_NetErrTimeout(t *testing.T) {
	err := &net.DNSError{Err: "lookup timed out", Name: "slow.invalid", IsTimeout: true}
	if got := CategorizeError(err); got != "Timeout" {
		t.Errorf("timeout net.Error categorized as %q, want Timeout", got)
	}
}
