package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CollectorConfig holds everything the collection pipeline needs. It is
// supplied by the caller (CLI, web layer, batch script); the core reads no
// environment variables or files on its own.
type CollectorConfig struct {
	RequestTimeout  time.Duration `yaml:"request_timeout,omitempty"`  // per-fetch timeout (default 30s)
	FollowRedirects bool          `yaml:"follow_redirects,omitempty"`
	VerifyTLS       bool          `yaml:"verify_tls,omitempty"` // fetcher verification; the cert inspector never verifies
	UserAgent       string        `yaml:"user_agent,omitempty"`
	MaxConcurrent   int           `yaml:"max_concurrent,omitempty"`  // batch admission limit (default 10)
	MaxBodyBytes    int64         `yaml:"max_body_bytes,omitempty"`  // response body read cap (default 10MiB)
	DetectCharset   bool          `yaml:"detect_charset,omitempty"`  // best-guess decoding for undeclared charsets
	InspectTimeout  time.Duration `yaml:"inspect_timeout,omitempty"` // TLS inspection dial deadline

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	Lexicon            Lexicon          `yaml:"lexicon,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`          // max total idle connections
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"` // max idle connections per host
	MaxConnsPerHost     int           `yaml:"max_conns_per_host,omitempty"`      // hard per-host connection cap
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`
}

// Lexicon carries the word lists the feature extractor scores against.
// They are injected data rather than package globals so tests (and
// deployments) can substitute their own tables.
type Lexicon struct {
	SuspiciousKeywords []string `yaml:"suspicious_keywords,omitempty"`
	SuspiciousTLDs     []string `yaml:"suspicious_tlds,omitempty"`
	TrustedDomains     []string `yaml:"trusted_domains,omitempty"`
	TrustedCAs         []string `yaml:"trusted_cas,omitempty"`
	KnownServers       []string `yaml:"known_servers,omitempty"`
}

// DefaultConfig returns a CollectorConfig with the stock pipeline settings
// and the default lexicon.
func DefaultConfig() CollectorConfig {
	return CollectorConfig{
		RequestTimeout:  30 * time.Second,
		FollowRedirects: true,
		VerifyTLS:       true,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		MaxConcurrent:   10,
		MaxBodyBytes:    10 * 1024 * 1024,
		DetectCharset:   true,
		InspectTimeout:  10 * time.Second,
		HTTPClientSettings: HTTPClientConfig{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DialerTimeout:       15 * time.Second,
			DialerKeepAlive:     30 * time.Second,
		},
		Lexicon: DefaultLexicon(),
	}
}

// DefaultLexicon returns the stock scoring tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		SuspiciousKeywords: []string{
			"login", "signin", "password", "credential", "account", "verify",
			"secure", "bank", "paypal", "update", "confirm", "urgent",
			"suspended", "limited", "authentication",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq", ".top", ".click", ".download",
			".stream", ".science", ".work", ".party", ".trade", ".date",
		},
		TrustedDomains: []string{
			"google.com", "facebook.com", "twitter.com", "instagram.com",
			"linkedin.com", "youtube.com", "amazon.com", "microsoft.com",
			"apple.com", "github.com", "stackoverflow.com", "wikipedia.org",
		},
		TrustedCAs: []string{
			"Let's Encrypt", "DigiCert", "Comodo", "Symantec",
			"GoDaddy", "GlobalSign", "RapidSSL",
		},
		KnownServers: []string{"apache", "nginx", "iis"},
	}
}

// Load reads a CollectorConfig from a YAML file, starting from DefaultConfig
// so absent keys keep their defaults.
func Load(path string) (CollectorConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
