package utils

import (
	"net/http"
	"strings"
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	headers := http.Header{}
	headers.Set("Server", "nginx/1.25")
	headers.Set("X-Powered-By", "PHP/8.2")

	a := Fingerprint("https://example.com", headers, "<html>hello</html>")
	b := Fingerprint("https://example.com", headers, "<html>hello</html>")

	if a != b {
		t.Errorf("same inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(a))
	}
	for _, c := range a {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("fingerprint contains non-hex character %q", c)
		}
	}
}

func TestFingerprint_BodyLengthSensitive(t *testing.T) {
	// Only the body's length participates, not its content
	a := Fingerprint("https://example.com", nil, "aaaa")
	b := Fingerprint("https://example.com", nil, "bbbb")
	c := Fingerprint("https://example.com", nil, "aaaaa")

	if a != b {
		t.Error("bodies of equal length should fingerprint identically")
	}
	if a == c {
		t.Error("bodies of different length should fingerprint differently")
	}
}

func TestFingerprint_HeaderCaseInsensitive(t *testing.T) {
	upper := http.Header{}
	upper.Set("Server", "APACHE")
	lower := http.Header{}
	lower.Set("Server", "apache")

	if Fingerprint("https://example.com", upper, "x") != Fingerprint("https://example.com", lower, "x") {
		t.Error("server header casing should not affect the fingerprint")
	}
}

func TestFingerprint_URLSensitive(t *testing.T) {
	a := Fingerprint("https://example.com/a", nil, "body")
	b := Fingerprint("https://example.com/b", nil, "body")
	if a == b {
		t.Error("different URLs should fingerprint differently")
	}
}

func TestFingerprint_NilHeaders(t *testing.T) {
	// nil headers must behave like absent headers, not panic
	withEmpty := Fingerprint("https://example.com", http.Header{}, "body")
	withNil := Fingerprint("https://example.com", nil, "body")
	if withEmpty != withNil {
		t.Error("nil and empty headers should fingerprint identically")
	}
}

func TestFingerprint_IsDigestOfComposedIdentity(t *testing.T) {
	headers := http.Header{}
	headers.Set("Server", "nginx")

	got := Fingerprint("https://example.com", headers, "abc")
	want := StringSHA256("https://example.com|nginx||3")
	if got != want {
		t.Errorf("fingerprint %s does not digest the composed identity string (want %s)", got, want)
	}
}

func TestStringSHA256(t *testing.T) {
	// Known vector for the empty string
	got := StringSHA256("")
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("StringSHA256(\"\") = %s, want %s", got, want)
	}
}
