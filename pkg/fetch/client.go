package fetch

import (
	"crypto/tls"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"phishscope/pkg/config"
)

// NewClient creates the shared HTTP client for the collection session.
// The transport (connection pool) is shared read-mostly across all concurrent
// fetches; redirect policy is installed per request by the Fetcher.
func NewClient(cfg config.CollectorConfig, log *logrus.Logger) *http.Client {
	log.Debug("Initializing HTTP client...")

	hc := cfg.HTTPClientSettings

	// Create custom dialer with configured timeouts
	dialer := &net.Dialer{
		Timeout:   hc.DialerTimeout,
		KeepAlive: hc.DialerKeepAlive,
	}

	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		DialContext:            dialer.DialContext,
		ForceAttemptHTTP2:      true,
		MaxIdleConns:           hc.MaxIdleConns,
		MaxIdleConnsPerHost:    hc.MaxIdleConnsPerHost,
		MaxConnsPerHost:        hc.MaxConnsPerHost,
		IdleConnTimeout:        hc.IdleConnTimeout,
		TLSHandshakeTimeout:    hc.TLSHandshakeTimeout,
		MaxResponseHeaderBytes: 1 << 20, // 1MB max header size
	}

	if !cfg.VerifyTLS {
		// Phishing targets routinely present broken or self-signed chains;
		// the page content is still wanted when verification is off.
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		log.Warn("TLS certificate verification is DISABLED for fetches")
	}

	return &http.Client{
		// Backstop only; each fetch carries its own context deadline
		Timeout:   cfg.RequestTimeout,
		Transport: transport,
	}
}
