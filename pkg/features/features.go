package features

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"phishscope/pkg/config"
	"phishscope/pkg/models"
)

// Extractor turns a CollectionResult into the fixed feature schema the
// scoring model consumes. The lexicon tables are injected so tests and
// deployments can substitute their own.
type Extractor struct {
	lex config.Lexicon
	log *logrus.Logger
}

// NewExtractor creates an Extractor scoring against the given lexicon
func NewExtractor(lex config.Lexicon, log *logrus.Logger) *Extractor {
	return &Extractor{lex: lex, log: log}
}

// Features is the complete six-block feature record for one collected page.
// The blocks are fixed; Vector() flattens them in the versioned order the
// model indexes by position.
type Features struct {
	URL        URLFeatures
	HTTP       HTTPFeatures
	HTML       HTMLFeatures
	Content    ContentFeatures
	JavaScript JavaScriptFeatures
	Security   SecurityFeatures
	SSL        SSLFeatures
}

// Extract computes every feature block for res. It is total: each block runs
// inside its own failure boundary, and a failed block contributes its
// documented default sub-record instead of aborting extraction. Calling it
// twice on the same result yields identical features.
func (e *Extractor) Extract(res *models.CollectionResult) Features {
	var f Features

	urlFeats, err := e.urlFeatures(res.URL)
	if err != nil {
		e.log.Warnf("URL feature block degraded to defaults: %v", err)
		urlFeats = URLFeatures{}
	}
	f.URL = urlFeats

	f.HTTP = e.httpFeatures(res)

	// One parse shared by the DOM-backed blocks; a failure defaults each of
	// them independently
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(res.Body))
	if docErr != nil {
		doc = nil
	}

	htmlFeats, err := e.htmlFeatures(res, doc)
	if err != nil {
		e.log.Warnf("HTML feature block degraded to defaults: %v", err)
		htmlFeats = HTMLFeatures{}
	}
	f.HTML = htmlFeats

	f.Content = e.contentFeatures(res, doc)

	jsFeats, err := e.jsFeatures(doc)
	if err != nil {
		e.log.Warnf("JavaScript feature block degraded to defaults: %v", err)
		jsFeats = JavaScriptFeatures{}
	}
	f.JavaScript = jsFeats

	secFeats, err := e.securityFeatures(res, doc)
	if err != nil {
		e.log.Warnf("Security feature block degraded to defaults: %v", err)
		secFeats = SecurityFeatures{}
	}
	f.Security = secFeats

	f.SSL = e.sslFeatures(res)

	return f
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
