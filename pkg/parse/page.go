package parse

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"phishscope/pkg/models"
)

// maxLinks bounds feature-extraction cost on pathological pages
const maxLinks = 50

// ParsePage extracts the structural pieces of a fetched body that the
// feature extractor consumes. It tolerates unclosed tags, invalid nesting,
// and non-HTML bodies: whatever cannot be parsed degrades to an empty
// structure rather than an error. Relative src/href values are resolved
// against base so consumers never see relative paths.
func ParsePage(body string, base *url.URL, log *logrus.Logger) models.PageStructure {
	page := models.PageStructure{MetaTags: make(map[string]string)}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// net/html almost never errors; a non-UTF8 reader failure lands here
		log.Warnf("Markup parse degraded to empty structure: %v", err)
		return page
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())

	// Meta key preference: name, else property, else http-equiv. Tags
	// missing a key or content are skipped.
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key := s.AttrOr("name", "")
		if key == "" {
			key = s.AttrOr("property", "")
		}
		if key == "" {
			key = s.AttrOr("http-equiv", "")
		}
		content := s.AttrOr("content", "")
		if key != "" && content != "" {
			page.MetaTags[strings.ToLower(key)] = content
		}
	})

	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		if abs := resolve(base, s.AttrOr("src", "")); abs != "" {
			page.ExternalScripts = append(page.ExternalScripts, abs)
		}
	})

	doc.Find("link[rel='stylesheet']").Each(func(_ int, s *goquery.Selection) {
		if abs := resolve(base, s.AttrOr("href", "")); abs != "" {
			page.ExternalStylesheets = append(page.ExternalStylesheets, abs)
		}
	})

	doc.Find("form").Each(func(_ int, f *goquery.Selection) {
		form := models.Form{
			Action: f.AttrOr("action", ""),
			Method: strings.ToLower(f.AttrOr("method", "get")),
		}
		if form.Method == "" {
			form.Method = "get"
		}
		f.Find("input, textarea, select").Each(func(_ int, field *goquery.Selection) {
			name := field.AttrOr("name", "")
			if name == "" {
				return // unnamed fields never reach the server
			}
			fieldType := field.AttrOr("type", "text")
			form.Fields = append(form.Fields, models.FormField{Name: name, Type: fieldType})
			if fieldType == "password" {
				form.HasPasswordField = true
			}
		})
		page.Forms = append(page.Forms, form)
	})

	// Only absolute http/https anchors qualify, which also excludes
	// same-document fragment links. Document order, capped.
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if len(page.Links) >= maxLinks {
			return false
		}
		href := a.AttrOr("href", "")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			page.Links = append(page.Links, href)
		}
		return true
	})

	return page
}

// resolve makes ref absolute against base; empty refs and unparseable refs
// resolve to ""
func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	abs, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	return abs.String()
}
