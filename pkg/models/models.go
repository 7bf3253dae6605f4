package models

import (
	"net/http"
	"time"
)

// FormField is a single named input inside a form
type FormField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Form describes one <form> element found on a page
type Form struct {
	Action           string      `json:"action"`
	Method           string      `json:"method"` // lower-cased, "get" when absent
	Fields           []FormField `json:"fields,omitempty"`
	HasPasswordField bool        `json:"has_password_field"`
}

// PageStructure holds everything the markup parser pulls out of a response body
// All URL-valued fields are absolute (resolved against the page's base URL)
type PageStructure struct {
	Title               string            `json:"title,omitempty"`
	MetaTags            map[string]string `json:"meta_tags,omitempty"` // lower-cased name/property/http-equiv -> content
	ExternalScripts     []string          `json:"external_scripts,omitempty"`
	ExternalStylesheets []string          `json:"external_stylesheets,omitempty"`
	Forms               []Form            `json:"forms,omitempty"`
	Links               []string          `json:"links,omitempty"` // absolute http/https anchors, capped at 50
}

// SSLInfo holds the peer certificate attributes pulled by the inspector
// Present on a CollectionResult only for https URLs whose handshake succeeded
type SSLInfo struct {
	Issuer             map[string]string `json:"issuer"`
	Subject            map[string]string `json:"subject"`
	Version            int               `json:"version"`
	SerialNumber       string            `json:"serial_number"` // uppercase hex
	NotBefore          time.Time         `json:"not_before"`
	NotAfter           time.Time         `json:"not_after"`
	ValidDaysRemaining int               `json:"valid_days_remaining"` // max(0, days until NotAfter)
}

// FetchResult is the raw outcome of a single HTTP GET, before parsing and
// fingerprinting. A 4xx/5xx response with a readable body still yields a
// FetchResult; phishing pages commonly sit behind error-like statuses.
type FetchResult struct {
	URL           string            `json:"url"` // as requested, unmodified
	StatusCode    int               `json:"status_code"`
	ContentType   string            `json:"content_type"`   // MIME type only, parameters stripped
	ContentLength int64             `json:"content_length"` // Content-Length header, else len(Body)
	Headers       http.Header       `json:"headers"`
	Cookies       map[string]string `json:"cookies,omitempty"`
	Body          string            `json:"body"` // decoded to UTF-8, invalid sequences replaced
	// RedirectChain lists every URL visited before the final response, in
	// order, excluding the final URL. Empty exactly when no redirect occurred.
	RedirectChain []string `json:"redirect_chain,omitempty"`
	// ResponseTime spans from just before the request is issued until the
	// full body has been read.
	ResponseTime time.Duration `json:"response_time"`
}

// CollectionResult is the complete per-URL record assembled by the collector
// It is immutable once built; the feature extractor only reads it
type CollectionResult struct {
	URL           string            `json:"url"`
	StatusCode    int               `json:"status_code"`
	ContentType   string            `json:"content_type"`
	ContentLength int64             `json:"content_length"`
	Headers       http.Header       `json:"headers"`
	Cookies       map[string]string `json:"cookies,omitempty"`
	Body          string            `json:"body"`
	RedirectChain []string          `json:"redirect_chain,omitempty"`
	ResponseTime  time.Duration     `json:"response_time"`
	Page          PageStructure     `json:"page"`
	Fingerprint   string            `json:"fingerprint"` // 64-char hex, identity key
	SSLInfo       *SSLInfo          `json:"ssl_info,omitempty"`
	CollectedAt   time.Time         `json:"collected_at"`
}

// HeaderValue returns the first value for the given header name,
// case-insensitively, or "" when absent
func (r *CollectionResult) HeaderValue(name string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(name)
}

// BatchItem pairs one input URL with its collection outcome
// Exactly one of Result and Err is set
type BatchItem struct {
	URL    string            `json:"url"`
	Result *CollectionResult `json:"result,omitempty"`
	Err    error             `json:"-"`
}
