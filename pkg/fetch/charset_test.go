package fetch

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDecodeBody_UTF8Passthrough(t *testing.T) {
	body := "<html><body>héllo wörld</body></html>"
	got := decodeBody([]byte(body), "text/html; charset=utf-8", false)
	if got != body {
		t.Errorf("UTF-8 body changed during decode: %q", got)
	}
}

func TestDecodeBody_DeclaredLatin1(t *testing.T) {
	// 0xE9 is 'é' in ISO-8859-1 and invalid as a standalone UTF-8 byte
	raw := []byte("caf\xe9")
	got := decodeBody(raw, "text/html; charset=iso-8859-1", false)
	if got != "café" {
		t.Errorf("expected %q, got %q", "café", got)
	}
}

func TestDecodeBody_MetaPrescan(t *testing.T) {
	// No header charset; the <meta> tag inside the first KiB declares it
	raw := []byte(`<html><head><meta charset="iso-8859-1"></head><body>caf` + "\xe9" + `</body></html>`)
	got := decodeBody(raw, "text/html", false)
	if !strings.Contains(got, "café") {
		t.Errorf("expected meta-declared charset to be honored, got %q", got)
	}
}

func TestDecodeBody_InvalidBytesReplaced(t *testing.T) {
	raw := []byte("ok\xff\xfebytes")
	got := decodeBody(raw, "", false)
	if !utf8.ValidString(got) {
		t.Errorf("decode produced invalid UTF-8: %q", got)
	}
	if !strings.Contains(got, "ok") || !strings.Contains(got, "bytes") {
		t.Errorf("valid portions of the body were lost: %q", got)
	}
}

func TestDecodeBody_Empty(t *testing.T) {
	if got := decodeBody(nil, "text/html", true); got != "" {
		t.Errorf("expected empty string for empty body, got %q", got)
	}
}

func TestDecodeBody_DetectionAlwaysValidUTF8(t *testing.T) {
	// Whatever the detector guesses, output must be valid UTF-8
	samples := [][]byte{
		[]byte("plain ascii text with enough length for detection to engage"),
		[]byte("caf\xe9 au lait, d\xe9j\xe0 vu, na\xefve r\xe9sum\xe9"),
		{0x00, 0x01, 0x02, 0xff, 0xfe},
	}
	for _, raw := range samples {
		got := decodeBody(raw, "", true)
		if !utf8.ValidString(got) {
			t.Errorf("detection path produced invalid UTF-8 for %q", raw)
		}
	}
}
