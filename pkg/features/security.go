package features

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"phishscope/pkg/models"
)

// SecurityFeatures is the page-behavior half of the security/SSL block:
// crawler directives, hidden content, popups, forced navigation
type SecurityFeatures struct {
	HasNoIndex        bool
	HasNoFollow       bool
	HasHiddenElements bool
	HasPopupCode      bool
	HasAlertCode      bool
	HasMetaRefresh    bool
	HasFrameset       bool
	HasBaseHref       bool
	BaseHrefExternal  bool
}

// SSLFeatures is the certificate half of the security/SSL block
type SSLFeatures struct {
	HasSSL                  bool
	SSLValidDays            int
	SSLIsValid              bool
	SSLExpiresSoon          bool
	SSLIssuerKnown          bool
	SSLSubjectMatchesDomain bool
}

var hiddenStylePattern = regexp.MustCompile(`(?i)display\s*:\s*none|visibility\s*:\s*hidden`)

func (e *Extractor) securityFeatures(res *models.CollectionResult, doc *goquery.Document) (SecurityFeatures, error) {
	if doc == nil {
		return SecurityFeatures{}, errNoDocument
	}

	robots := strings.ToLower(res.Page.MetaTags["robots"])
	f := SecurityFeatures{
		HasNoIndex:  robots == "noindex",
		HasNoFollow: robots == "nofollow",
	}

	doc.Find("[style]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hiddenStylePattern.MatchString(s.AttrOr("style", "")) {
			f.HasHiddenElements = true
			return false
		}
		return true
	})

	lowerBody := strings.ToLower(res.Body)
	f.HasPopupCode = strings.Contains(lowerBody, "window.open")
	f.HasAlertCode = strings.Contains(lowerBody, "alert(")

	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(s.AttrOr("http-equiv", ""), "refresh") {
			f.HasMetaRefresh = true
			return false
		}
		return true
	})

	f.HasFrameset = doc.Find("frameset").Length() > 0

	if baseHref := doc.Find("base[href]").First().AttrOr("href", ""); baseHref != "" {
		f.HasBaseHref = true
		if parsed, err := url.Parse(res.URL); err == nil && parsed.Host != "" {
			f.BaseHrefExternal = !strings.Contains(baseHref, parsed.Host)
		}
	}

	return f, nil
}

func (e *Extractor) sslFeatures(res *models.CollectionResult) SSLFeatures {
	info := res.SSLInfo
	if info == nil {
		// No certificate is itself a signal; the soon-to-expire default
		// leans the same direction
		return SSLFeatures{SSLExpiresSoon: true}
	}

	f := SSLFeatures{
		HasSSL:         true,
		SSLValidDays:   info.ValidDaysRemaining,
		SSLIsValid:     true, // handshake produced a certificate
		SSLExpiresSoon: info.ValidDaysRemaining < 30,
	}

	for _, ca := range e.lex.TrustedCAs {
		for _, v := range info.Issuer {
			if v == ca {
				f.SSLIssuerKnown = true
				break
			}
		}
		if f.SSLIssuerKnown {
			break
		}
	}

	if parsed, err := url.Parse(res.URL); err == nil {
		var subjectValues []string
		for _, v := range info.Subject {
			subjectValues = append(subjectValues, strings.ToLower(v))
		}
		subjectStr := strings.Join(subjectValues, " ")
		for _, label := range strings.Split(strings.ToLower(parsed.Hostname()), ".") {
			if label != "" && strings.Contains(subjectStr, label) {
				f.SSLSubjectMatchesDomain = true
				break
			}
		}
	}

	return f
}
