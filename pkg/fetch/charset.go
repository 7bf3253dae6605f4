package fetch

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// decodeBody converts a raw response body to UTF-8. Priority: charset
// declared in the Content-Type header (or a <meta> prescan), then a chardet
// best-guess when nothing is declared and detection is enabled, then UTF-8
// with invalid sequences replaced. It never fails; at worst the raw bytes
// come back with replacement runes.
func decodeBody(raw []byte, contentType string, detect bool) string {
	if len(raw) == 0 {
		return ""
	}

	declared := strings.Contains(strings.ToLower(contentType), "charset=")
	if !declared && detect {
		if best, err := chardet.NewTextDetector().DetectBest(raw); err == nil && best.Charset != "" {
			if decoded, ok := decodeWithLabel(raw, best.Charset); ok {
				return decoded
			}
		}
	}

	// charset.NewReader honors the header charset, BOMs, and a <meta>
	// prescan of the first 1024 bytes
	if r, err := charset.NewReader(bytes.NewReader(raw), contentType); err == nil {
		if decoded, err := io.ReadAll(r); err == nil {
			return strings.ToValidUTF8(string(decoded), string(utf8.RuneError))
		}
	}

	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

func decodeWithLabel(raw []byte, label string) (string, bool) {
	r, err := charset.NewReaderLabel(label, bytes.NewReader(raw))
	if err != nil {
		return "", false
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return "", false
	}
	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError)), true
}
