package config

import (
	"fmt"
	"time"
)

// Validate checks CollectorConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *CollectorConfig) Validate() (warnings []string, err error) {
	// RequestTimeout
	if c.RequestTimeout <= 0 {
		warnings = append(warnings, "request_timeout should be > 0, defaulting to 30s")
		c.RequestTimeout = 30 * time.Second
	}

	// MaxConcurrent
	if c.MaxConcurrent <= 0 {
		warnings = append(warnings, "max_concurrent should be > 0, defaulting to 10")
		c.MaxConcurrent = 10
	}

	// MaxBodyBytes
	if c.MaxBodyBytes <= 0 {
		warnings = append(warnings, "max_body_bytes should be > 0, defaulting to 10MiB")
		c.MaxBodyBytes = 10 * 1024 * 1024
	}

	// UserAgent
	if c.UserAgent == "" {
		warnings = append(warnings, "user_agent is empty, using default browser agent")
		c.UserAgent = DefaultConfig().UserAgent
	}

	// InspectTimeout
	if c.InspectTimeout <= 0 {
		c.InspectTimeout = 10 * time.Second
	}

	// HTTP client settings
	h := &c.HTTPClientSettings
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 10
	}
	if h.MaxConnsPerHost < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"max_conns_per_host cannot be negative (%d), setting to 0 (unlimited)", h.MaxConnsPerHost))
		h.MaxConnsPerHost = 0
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}

	// Lexicon: empty tables fall back to the defaults so the extractor
	// always has something to score against
	def := DefaultLexicon()
	if len(c.Lexicon.SuspiciousKeywords) == 0 {
		c.Lexicon.SuspiciousKeywords = def.SuspiciousKeywords
	}
	if len(c.Lexicon.SuspiciousTLDs) == 0 {
		c.Lexicon.SuspiciousTLDs = def.SuspiciousTLDs
	}
	if len(c.Lexicon.TrustedDomains) == 0 {
		c.Lexicon.TrustedDomains = def.TrustedDomains
	}
	if len(c.Lexicon.TrustedCAs) == 0 {
		c.Lexicon.TrustedCAs = def.TrustedCAs
	}
	if len(c.Lexicon.KnownServers) == 0 {
		c.Lexicon.KnownServers = def.KnownServers
	}

	return warnings, nil
}
