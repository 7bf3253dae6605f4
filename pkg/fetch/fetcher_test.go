package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"phishscope/pkg/config"
	"phishscope/pkg/utils"
)

// testLogger returns a logger that discards output
func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testConfig returns a CollectorConfig suitable for testing against local servers
func testConfig() config.CollectorConfig {
	cfg := config.DefaultConfig()
	cfg.RequestTimeout = 5 * time.Second
	cfg.DetectCharset = false // local fixtures are plain ASCII
	return cfg
}

func newTestFetcher(cfg config.CollectorConfig) *Fetcher {
	log := testLogger()
	return NewFetcher(NewClient(cfg, log), cfg, log)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http URL", "http://example.com/path", false},
		{"https URL", "https://example.com", false},
		{"https with port and query", "https://example.com:8443/a?b=c", false},
		{"missing scheme", "example.com/path", true},
		{"unsupported scheme", "ftp://example.com/file", true},
		{"scheme only", "https://", true},
		{"empty", "", true},
		{"relative path", "/just/a/path", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got nil", tt.url)
				}
				if !errors.Is(err, utils.ErrInvalidURL) {
					t.Errorf("expected ErrInvalidURL, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("expected no error for %q, got: %v", tt.url, err)
			}
		})
	}
}

func TestFetch_Success(t *testing.T) {
	const body = "<html><head><title>ok</title></head><body>hello</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
			t.Errorf("expected browser user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Server", "nginx")
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	fetcher := newTestFetcher(testConfig())
	res, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if res.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", res.StatusCode)
	}
	if res.Body != body {
		t.Errorf("body mismatch: got %q", res.Body)
	}
	if res.ContentType != "text/html" {
		t.Errorf("expected content type stripped of parameters, got %q", res.ContentType)
	}
	if res.Cookies["session"] != "abc123" {
		t.Errorf("expected session cookie, got %v", res.Cookies)
	}
	if len(res.RedirectChain) != 0 {
		t.Errorf("expected empty redirect chain, got %v", res.RedirectChain)
	}
	if res.ResponseTime <= 0 {
		t.Error("expected positive response time")
	}
	if res.Headers.Get("Server") != "nginx" {
		t.Errorf("expected Server header preserved, got %q", res.Headers.Get("Server"))
	}
}

func TestFetch_GzipResponseIsDecoded(t *testing.T) {
	// The fetcher must not set Accept-Encoding itself: only when the
	// transport negotiates gzip does it also decompress transparently
	const body = "<html><head><title>compressed page</title></head><body>hello</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Errorf("expected transport-negotiated gzip, got Accept-Encoding %q", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		gz := gzip.NewWriter(w)
		io.WriteString(gz, body)
		gz.Close()
	}))
	t.Cleanup(server.Close)

	fetcher := newTestFetcher(testConfig())
	res, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if strings.HasPrefix(res.Body, "\x1f\x8b") {
		t.Fatal("body still holds raw gzip bytes")
	}
	if res.Body != body {
		t.Errorf("body mismatch after decompression: got %q", res.Body)
	}
	// Content-Length of the compressed stream is dropped by the transport,
	// so the record falls back to the decoded body size
	if res.ContentLength != int64(len(body)) {
		t.Errorf("expected content length %d, got %d", len(body), res.ContentLength)
	}
}

func TestFetch_ErrorStatusIsStillSuccess(t *testing.T) {
	// Phishing pages frequently hide behind 4xx/5xx; a readable body is a
	// successful fetch regardless of status
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "<html>not found but still a page</html>")
	}))
	t.Cleanup(server.Close)

	fetcher := newTestFetcher(testConfig())
	res, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error for 404 with readable body, got: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", res.StatusCode)
	}
	if res.Body == "" {
		t.Error("expected non-empty body")
	}
}

func TestFetch_RedirectChain(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/final", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "landed")
	})

	fetcher := newTestFetcher(testConfig())
	res, err := fetcher.Fetch(context.Background(), server.URL+"/a")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Chain holds every pre-final URL in hop order and excludes the final URL
	want := []string{server.URL + "/a", server.URL + "/b"}
	if len(res.RedirectChain) != len(want) {
		t.Fatalf("expected chain %v, got %v", want, res.RedirectChain)
	}
	for i := range want {
		if res.RedirectChain[i] != want[i] {
			t.Errorf("chain[%d] = %q, want %q", i, res.RedirectChain[i], want[i])
		}
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected final status 200, got %d", res.StatusCode)
	}
	if res.Body != "landed" {
		t.Errorf("expected final body, got %q", res.Body)
	}
}

func TestFetch_RedirectsDisabled(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/b", http.StatusFound)
	})

	cfg := testConfig()
	cfg.FollowRedirects = false
	fetcher := newTestFetcher(cfg)

	res, err := fetcher.Fetch(context.Background(), server.URL+"/a")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.StatusCode != http.StatusFound {
		t.Errorf("expected raw 302 when redirects are disabled, got %d", res.StatusCode)
	}
	if len(res.RedirectChain) != 0 {
		t.Errorf("expected empty chain, got %v", res.RedirectChain)
	}
}

func TestFetch_RedirectLoop(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/loop", http.StatusFound)
	})

	fetcher := newTestFetcher(testConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL+"/loop")
	if err == nil {
		t.Fatal("expected error for redirect loop, got nil")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
	if fetchErr.Kind != "RedirectLoop" {
		t.Errorf("expected kind RedirectLoop, got %q", fetchErr.Kind)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	fetcher := newTestFetcher(cfg)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
	if fetchErr.Kind != "Timeout" {
		t.Errorf("expected kind Timeout, got %q", fetchErr.Kind)
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	fetcher := newTestFetcher(testConfig())
	_, err := fetcher.Fetch(context.Background(), "not-a-url")
	if err == nil {
		t.Fatal("expected error for invalid URL, got nil")
	}

	var fetchErr *Error
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *fetch.Error, got %T", err)
	}
	if fetchErr.Kind != "InvalidURL" {
		t.Errorf("expected kind InvalidURL, got %q", fetchErr.Kind)
	}
	if !errors.Is(err, utils.ErrInvalidURL) {
		t.Error("expected error chain to reach ErrInvalidURL")
	}
}

func TestFetch_BodyCap(t *testing.T) {
	big := strings.Repeat("x", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, big)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.MaxBodyBytes = 1024
	fetcher := newTestFetcher(cfg)

	res, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(res.Body) != 1024 {
		t.Errorf("expected body capped at 1024 bytes, got %d", len(res.Body))
	}
}

func TestFetch_ContentLengthFallsBackToBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Flusher forces chunked encoding, so no Content-Length header
		io.WriteString(w, "chunk one ")
		w.(http.Flusher).Flush()
		io.WriteString(w, "chunk two")
	}))
	t.Cleanup(server.Close)

	fetcher := newTestFetcher(testConfig())
	res, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if res.ContentLength != int64(len(res.Body)) {
		t.Errorf("expected content length %d from body, got %d", len(res.Body), res.ContentLength)
	}
}

func TestMediaType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"text/html; charset=utf-8", "text/html"},
		{"text/html", "text/html"},
		{"application/json;charset=UTF-8", "application/json"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := mediaType(tt.in); got != tt.want {
			t.Errorf("mediaType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
