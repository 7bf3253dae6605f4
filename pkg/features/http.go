package features

import (
	"math"
	"strings"

	"phishscope/pkg/models"
)

// HTTPFeatures is the header-hygiene block computed from the response
// metadata (status, headers, cookies, timing)
type HTTPFeatures struct {
	StatusCodeCategory         int // statusCode / 100
	IsRedirect                 bool
	IsError                    bool
	HasContentSecurityPolicy   bool
	HasXFrameOptions           bool
	HasStrictTransportSecurity bool
	HasXContentTypeOptions     bool
	HasXXSSProtection          bool
	NumCookies                 int
	HasSecureCookie            bool
	HasHTTPOnlyCookie          bool
	HasKnownServer             bool
	IsCloudflare               bool
	IsHTMLContent              bool
	HasCharset                 bool
	HasNoCache                 bool
	HasNoStore                 bool
	ContentLengthLog           float64 // log1p of the declared/actual length
	ResponseTimeLog            float64 // log1p of seconds
}

func (e *Extractor) httpFeatures(res *models.CollectionResult) HTTPFeatures {
	f := HTTPFeatures{
		StatusCodeCategory: res.StatusCode / 100,
		IsRedirect:         res.StatusCode >= 300 && res.StatusCode < 400,
		IsError:            res.StatusCode >= 400,
		NumCookies:         len(res.Cookies),
		ContentLengthLog:   math.Log1p(float64(res.ContentLength)),
		ResponseTimeLog:    math.Log1p(res.ResponseTime.Seconds()),
	}

	f.HasContentSecurityPolicy = res.HeaderValue("Content-Security-Policy") != ""
	f.HasXFrameOptions = res.HeaderValue("X-Frame-Options") != ""
	f.HasStrictTransportSecurity = res.HeaderValue("Strict-Transport-Security") != ""
	f.HasXContentTypeOptions = res.HeaderValue("X-Content-Type-Options") != ""
	f.HasXXSSProtection = res.HeaderValue("X-XSS-Protection") != ""

	for _, v := range res.Cookies {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "secure") {
			f.HasSecureCookie = true
		}
		if strings.Contains(lower, "httponly") {
			f.HasHTTPOnlyCookie = true
		}
	}

	server := strings.ToLower(res.HeaderValue("Server"))
	for _, known := range e.lex.KnownServers {
		if strings.Contains(server, known) {
			f.HasKnownServer = true
			break
		}
	}
	f.IsCloudflare = strings.Contains(server, "cloudflare")

	contentType := strings.ToLower(res.HeaderValue("Content-Type"))
	f.IsHTMLContent = strings.Contains(contentType, "text/html")
	f.HasCharset = strings.Contains(contentType, "charset=")

	cacheControl := strings.ToLower(res.HeaderValue("Cache-Control"))
	f.HasNoCache = strings.Contains(cacheControl, "no-cache")
	f.HasNoStore = strings.Contains(cacheControl, "no-store")

	return f
}
