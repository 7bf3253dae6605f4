package parse

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"strips default http port", "http://example.com:80/page", "http://example.com/page"},
		{"strips default https port", "https://example.com:443/page", "https://example.com/page"},
		{"keeps non-default port", "https://example.com:8443/page", "https://example.com:8443/page"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
		{"trims trailing slash", "https://example.com/a/b/", "https://example.com/a/b"},
		{"root path kept", "https://example.com/", "https://example.com/"},
		{"drops query", "https://example.com/p?b=2&a=1", "https://example.com/p"},
		{"drops fragment", "https://example.com/p#section", "https://example.com/p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, NormalizeURL(u))
		})
	}
}

func TestNormalizeURL_Nil(t *testing.T) {
	assert.Equal(t, "", NormalizeURL(nil))
}

func TestNormalizeURL_DoesNotMutateInput(t *testing.T) {
	u, err := url.Parse("HTTPS://Example.COM/a/?q=1#f")
	require.NoError(t, err)
	_ = NormalizeURL(u)
	assert.Equal(t, "Example.COM", u.Host)
	assert.Equal(t, "q=1", u.RawQuery)
	assert.Equal(t, "f", u.Fragment)
}

func TestParseAndNormalize(t *testing.T) {
	norm, parsed, err := ParseAndNormalize("https://Example.com/page/")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", norm)
	assert.Equal(t, "Example.com", parsed.Host)

	_, _, err = ParseAndNormalize("no-scheme.com/page")
	assert.Error(t, err, "scheme is required")
}
