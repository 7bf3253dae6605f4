package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// fingerprintDelimiter joins the identity components before hashing.
// Changing it changes every stored fingerprint.
const fingerprintDelimiter = "|"

// Fingerprint derives the content-identity digest for a fetched page:
// SHA-256 over url | lower(Server) | lower(X-Powered-By) | decimal body length.
// It is a deduplication key, not a content hash of the body itself - two
// byte-identical responses from the same URL always fingerprint identically.
func Fingerprint(url string, headers http.Header, body string) string {
	server := ""
	poweredBy := ""
	if headers != nil {
		server = strings.ToLower(headers.Get("Server"))
		poweredBy = strings.ToLower(headers.Get("X-Powered-By"))
	}

	data := fmt.Sprintf("%s%s%s%s%s%s%d",
		url, fingerprintDelimiter,
		server, fingerprintDelimiter,
		poweredBy, fingerprintDelimiter,
		len(body))

	return StringSHA256(data)
}

// StringSHA256 computes the SHA-256 hash of a string
func StringSHA256(content string) string {
	hash := sha256.New()
	hash.Write([]byte(content))
	return hex.EncodeToString(hash.Sum(nil))
}
