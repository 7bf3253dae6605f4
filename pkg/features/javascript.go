package features

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// JavaScriptFeatures is the inline-script block: obfuscation signals,
// suspicious API usage, redirect and form manipulation markers
type JavaScriptFeatures struct {
	HasObfuscatedJS     bool
	HasEvalFunction     bool
	HasDocumentWrite    bool
	HasInnerHTML        bool
	HasEscapeFunction   bool
	HasUnescapeFunction bool
	HasFromCharCode     bool
	HasLocationReplace  bool
	HasWindowLocation   bool
	HasFormSubmission   bool
	HasCryptoTerms      bool
	HasEventListeners   bool
	JSContentLength     int
	JSContentLengthLog  float64
}

// Obfuscation signals: hex/unicode escapes, anonymous-function assignment,
// and the classic decode-and-execute calls
var obfuscationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\\x[0-9a-fA-F]{2}`),
	regexp.MustCompile(`\\u[0-9a-fA-F]{4}`),
	regexp.MustCompile(`(?i)[a-z_$][a-z0-9_$]*\s*=\s*function`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)document\.write\s*\(`),
	regexp.MustCompile(`(?i)fromCharCode\s*\(`),
}

var cryptoTerms = []string{"md5", "sha1", "sha256", "encrypt", "decrypt"}

func (e *Extractor) jsFeatures(doc *goquery.Document) (JavaScriptFeatures, error) {
	if doc == nil {
		return JavaScriptFeatures{}, errNoDocument
	}

	// Concatenated inline scripts, lower-cased once for the substring checks
	var sb strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, hasSrc := s.Attr("src"); hasSrc {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s.Text())
	})
	js := strings.ToLower(sb.String())

	jsRunes := utf8.RuneCountInString(js)
	f := JavaScriptFeatures{
		JSContentLength:    jsRunes,
		JSContentLengthLog: math.Log1p(float64(jsRunes)),
	}

	for _, pattern := range obfuscationPatterns {
		if pattern.MatchString(js) {
			f.HasObfuscatedJS = true
			break
		}
	}

	f.HasEvalFunction = strings.Contains(js, "eval(")
	f.HasDocumentWrite = strings.Contains(js, "document.write")
	f.HasInnerHTML = strings.Contains(js, "innerhtml")
	f.HasEscapeFunction = strings.Contains(js, "escape(")
	f.HasUnescapeFunction = strings.Contains(js, "unescape(")
	f.HasFromCharCode = strings.Contains(js, "fromcharcode")
	f.HasLocationReplace = strings.Contains(js, "location.replace")
	f.HasWindowLocation = strings.Contains(js, "window.location")
	f.HasFormSubmission = strings.Contains(js, "submit(") || strings.Contains(js, ".submit")

	for _, term := range cryptoTerms {
		if strings.Contains(js, term) {
			f.HasCryptoTerms = true
			break
		}
	}
	f.HasEventListeners = strings.Contains(js, "addeventlistener") || strings.Contains(js, "attachevent")

	return f, nil
}
