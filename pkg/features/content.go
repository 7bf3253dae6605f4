package features

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"phishscope/pkg/models"
)

// ContentFeatures is the visible-text block: title/body sizes, word stats,
// suspicious keyword hits, punctuation and casing signals
type ContentFeatures struct {
	TitleLength            int
	HasTitle               bool
	ContentLength          int     // body length in characters
	ContentLengthLog       float64 // log1p of the body character count
	TextLength             int
	TextToHTMLRatio        float64
	NumWords               int
	AvgWordLength          float64
	HasSuspiciousKeywords  bool
	SuspiciousKeywordCount int
	HasEmoji               bool
	ExclamationCount       int
	QuestionCount          int
	UppercaseRatio         float64
}

var emojiPattern = regexp.MustCompile(`[\x{1F600}-\x{1F64F}]`)

func (e *Extractor) contentFeatures(res *models.CollectionResult, doc *goquery.Document) ContentFeatures {
	// Sizes count characters, not bytes, so CJK and other multibyte pages
	// are measured like their latin counterparts
	title := res.Page.Title
	bodyRunes := utf8.RuneCountInString(res.Body)
	f := ContentFeatures{
		TitleLength:      utf8.RuneCountInString(title),
		HasTitle:         strings.TrimSpace(title) != "",
		ContentLength:    bodyRunes,
		ContentLengthLog: math.Log1p(float64(bodyRunes)),
	}

	text := visibleText(doc)
	f.TextLength = utf8.RuneCountInString(text)
	f.TextToHTMLRatio = float64(f.TextLength) / math.Max(float64(bodyRunes), 1)

	words := strings.Fields(text)
	f.NumWords = len(words)
	if len(words) > 0 {
		totalLen := 0
		for _, w := range words {
			totalLen += len([]rune(w))
		}
		f.AvgWordLength = float64(totalLen) / float64(len(words))
	}

	lower := strings.ToLower(text)
	for _, keyword := range e.lex.SuspiciousKeywords {
		if n := strings.Count(lower, keyword); n > 0 {
			f.HasSuspiciousKeywords = true
			f.SuspiciousKeywordCount += n
		}
	}

	f.HasEmoji = emojiPattern.MatchString(text)
	f.ExclamationCount = strings.Count(text, "!")
	f.QuestionCount = strings.Count(text, "?")

	if text != "" {
		upper, total := 0, 0
		for _, r := range text {
			total++
			if unicode.IsUpper(r) {
				upper++
			}
		}
		f.UppercaseRatio = float64(upper) / float64(total)
	}

	return f
}

// visibleText extracts the page's rendered text: script and style subtrees
// are stripped first, and whitespace is collapsed to single spaces
func visibleText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	clone := doc.Selection.Clone()
	clone.Find("script, style").Remove()
	return strings.Join(strings.Fields(clone.Text()), " ")
}
