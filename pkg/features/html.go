package features

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"phishscope/pkg/models"
)

var errNoDocument = errors.New("document failed to parse")

// HTMLFeatures is the DOM-structure block: resource counts, form shape,
// link split, embedded frames and scripts
type HTMLFeatures struct {
	NumMetaTags            int
	HasDescriptionMeta     bool
	HasKeywordsMeta        bool
	NumExternalScripts     int
	NumExternalStylesheets int
	NumForms               int
	HasPasswordForm        bool
	HasLoginForm           bool
	NumLinks               int
	NumInternalLinks       int
	NumExternalLinks       int
	InternalLinkRatio      float64
	NumImages              int
	HasExternalImages      bool
	NumIframes             int
	HasHiddenIframes       bool
	NumScripts             int
	NumInlineScripts       int
}

func (e *Extractor) htmlFeatures(res *models.CollectionResult, doc *goquery.Document) (HTMLFeatures, error) {
	if doc == nil {
		return HTMLFeatures{}, errNoDocument
	}

	f := HTMLFeatures{
		NumExternalScripts:     len(res.Page.ExternalScripts),
		NumExternalStylesheets: len(res.Page.ExternalStylesheets),
		NumForms:               len(res.Page.Forms),
		NumLinks:               len(res.Page.Links),
	}

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		f.NumMetaTags++
		name := strings.ToLower(s.AttrOr("name", ""))
		if name == "description" {
			f.HasDescriptionMeta = true
		}
		if name == "keywords" {
			f.HasKeywordsMeta = true
		}
	})

	for _, form := range res.Page.Forms {
		if form.HasPasswordField {
			f.HasPasswordForm = true
		}
		action := strings.ToLower(form.Action)
		if strings.Contains(action, "login") || strings.Contains(action, "signin") {
			f.HasLoginForm = true
		}
	}

	if len(res.Page.Links) > 0 {
		domain := ""
		if parsed, err := url.Parse(res.URL); err == nil {
			domain = strings.ToLower(parsed.Host)
		}
		for _, link := range res.Page.Links {
			if domain != "" && strings.Contains(strings.ToLower(link), domain) {
				f.NumInternalLinks++
			}
		}
		f.NumExternalLinks = f.NumLinks - f.NumInternalLinks
		f.InternalLinkRatio = float64(f.NumInternalLinks) / float64(f.NumLinks)
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		f.NumImages++
		if src := s.AttrOr("src", ""); src != "" && !strings.HasPrefix(src, "/") {
			f.HasExternalImages = true
		}
	})

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		f.NumIframes++
		style := strings.ToLower(s.AttrOr("style", ""))
		_, hidden := s.Attr("hidden")
		if strings.Contains(style, "display:none") || hidden {
			f.HasHiddenIframes = true
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		f.NumScripts++
		if _, hasSrc := s.Attr("src"); !hasSrc {
			f.NumInlineScripts++
		}
	})

	return f, nil
}
