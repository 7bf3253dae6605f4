package features

import (
	"fmt"
	"math"
	"net"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// URLFeatures is the lexical block computed from the URL string alone
type URLFeatures struct {
	URLLength        int
	DomainLength     int
	PathLength       int
	QueryLength      int
	URLEntropy       float64
	HasIPAddress     bool
	NumSubdomains    int
	DomainAgeMonths  int
	HasAtSymbol      bool
	HasDashSymbol    bool
	NumDots          int
	NumDigits        int
	NumLetters       int
	NumSpecialChars  int
	HasPort          bool
	HasFragment      bool
	NumParams        int
	HasSuspiciousTLD bool
	IsTrustedDomain  bool
	DomainSimilarity float64
	IsHTTPS          bool
	HasHSTS          bool
}

var specialCharPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

func (e *Extractor) urlFeatures(rawURL string) (URLFeatures, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return URLFeatures{}, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}

	domain := strings.ToLower(parsed.Host)        // host with any port
	hostname := strings.ToLower(parsed.Hostname()) // host without port

	// Length features count characters, not bytes, so multibyte URLs
	// (IDN hosts, unicode paths) score the same as their visual length
	f := URLFeatures{
		URLLength:    utf8.RuneCountInString(rawURL),
		DomainLength: utf8.RuneCountInString(domain),
		PathLength:   utf8.RuneCountInString(parsed.Path),
		QueryLength:  utf8.RuneCountInString(parsed.RawQuery),
		URLEntropy:   Entropy(rawURL),
		HasAtSymbol:  strings.Contains(rawURL, "@"),
		NumDots:      strings.Count(rawURL, "."),
		HasPort:      parsed.Port() != "",
		HasFragment:  parsed.Fragment != "",
		IsHTTPS:      parsed.Scheme == "https",
	}

	// A parameter counts only when it carries at least one non-empty value;
	// bare keys like ?a=&b never do
	for _, vals := range parsed.Query() {
		for _, v := range vals {
			if v != "" {
				f.NumParams++
				break
			}
		}
	}

	ip := net.ParseIP(hostname)
	f.HasIPAddress = ip != nil && ip.To4() != nil
	f.NumSubdomains = subdomainCount(hostname)
	f.DomainAgeMonths = estimateDomainAge(hostname)
	f.HasDashSymbol = strings.Contains(domain, "-")
	f.HasHSTS = strings.Contains(domain, "hsts")

	for _, r := range rawURL {
		switch {
		case unicode.IsDigit(r):
			f.NumDigits++
		case unicode.IsLetter(r):
			f.NumLetters++
		}
	}
	f.NumSpecialChars = len(specialCharPattern.FindAllString(rawURL, -1))

	for _, tld := range e.lex.SuspiciousTLDs {
		if strings.HasSuffix(hostname, tld) {
			f.HasSuspiciousTLD = true
			break
		}
	}
	for _, trusted := range e.lex.TrustedDomains {
		if hostname == trusted {
			f.IsTrustedDomain = true
		}
		if ratio := SimilarityRatio(hostname, trusted); ratio > f.DomainSimilarity {
			f.DomainSimilarity = ratio
		}
	}

	return f, nil
}

// Entropy returns the Shannon entropy in bits of the rune-frequency
// distribution of s. The empty string has entropy 0.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	counts := make(map[rune]int)
	total := 0
	for _, r := range s {
		counts[r]++
		total++
	}
	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / float64(total)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// subdomainCount is max(0, dots-1): a.b.example.com has two subdomain labels
func subdomainCount(hostname string) int {
	dots := strings.Count(hostname, ".")
	if dots <= 1 {
		return 0
	}
	return dots - 1
}

// estimateDomainAge is a crude WHOIS-free heuristic: longer domains skew
// newer. Units are months.
func estimateDomainAge(hostname string) int {
	switch {
	case len(hostname) > 20:
		return 3
	case len(hostname) > 15:
		return 6
	default:
		return 12
	}
}
