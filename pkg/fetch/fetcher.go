package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"phishscope/pkg/config"
	"phishscope/pkg/models"
	"phishscope/pkg/utils"
)

// Error is the structured failure for a single URL's fetch. It is the only
// failure class that crosses the collection boundary; everything after a
// successful fetch degrades instead of erroring.
type Error struct {
	Kind string // stable category from utils.CategorizeError
	URL  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s [%s]: %v", e.URL, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher issues one GET per URL against the shared client. It applies the
// configured header set, captures the redirect chain, and decodes the body.
// There is no retry logic here; a URL gets exactly one attempt.
type Fetcher struct {
	client *http.Client
	cfg    config.CollectorConfig
	log    *logrus.Logger
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, cfg config.CollectorConfig, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: client,
		cfg:    cfg,
		log:    log,
	}
}

// ValidateURL checks that rawURL is syntactically absolute with an http or
// https scheme, returning the parsed URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.ParseRequestURI(rawURL) // stricter parsing, requires scheme
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", utils.ErrInvalidURL, rawURL)
	}
	return parsed, nil
}

// Fetch performs a single GET for rawURL and returns the raw response record.
// The measured response time runs from just before the request is issued
// until the full body has been read.
//
// A response with any status code and a readable body is a successful fetch;
// network, DNS, TLS, timeout, and body-read failures come back as *Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	reqLog := f.log.WithField("url", rawURL)

	if _, err := ValidateURL(rawURL); err != nil {
		return nil, &Error{Kind: utils.CategorizeError(err), URL: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		err = fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
		return nil, &Error{Kind: utils.CategorizeError(err), URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	// Accept-Encoding stays unset: the transport only decompresses gzip
	// transparently when it negotiated the encoding itself

	// Shallow client copy so the per-request redirect policy can write into
	// this fetch's chain without racing sibling fetches. The transport (and
	// its connection pool) stays shared.
	client := *f.client
	var chain []string
	if f.cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return utils.ErrTooManyRedirects
			}
			// via holds every pre-final request in order; rebuild each hop so
			// the chain always reflects the full history
			chain = chain[:0]
			for _, r := range via {
				chain = append(chain, r.URL.String())
			}
			reqLog.Debugf("Redirecting to %s (hop %d)", req.URL, len(via))
			return nil
		}
	} else {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		kind := utils.CategorizeError(err)
		reqLog.WithField("kind", kind).Errorf("Fetch failed: %v", err)
		return nil, &Error{Kind: kind, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	responseTime := time.Since(start)
	if err != nil {
		err = fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
		reqLog.Errorf("Body read failed after %v: %v", responseTime, err)
		return nil, &Error{Kind: utils.CategorizeError(err), URL: rawURL, Err: err}
	}

	body := decodeBody(raw, resp.Header.Get("Content-Type"), f.cfg.DetectCharset)

	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}

	result := &models.FetchResult{
		URL:           rawURL,
		StatusCode:    resp.StatusCode,
		ContentType:   mediaType(resp.Header.Get("Content-Type")),
		ContentLength: contentLength(resp.Header, len(body)),
		Headers:       resp.Header,
		Cookies:       cookies,
		Body:          body,
		RedirectChain: chain,
		ResponseTime:  responseTime,
	}

	reqLog.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"response_time": responseTime,
		"redirects":     len(chain),
	}).Debug("Fetched")

	return result, nil
}

// mediaType strips parameters from a Content-Type header value
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}

// contentLength prefers the declared Content-Length header, falling back to
// the actual decoded body size
func contentLength(headers http.Header, bodyLen int) int64 {
	if v := headers.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return int64(bodyLen)
}
