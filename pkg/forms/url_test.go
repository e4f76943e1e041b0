package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependHTTP(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "http://example.com"},
		{"  example.com/path ", "http://example.com/path"},
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"localhost:3000", "http://localhost:3000"},
		{"mailto:hello@example.com", "mailto:hello@example.com"},
		{"/relative/path", "/relative/path"},
		{"../up", "../up"},
		{"//cdn.example.com", "//cdn.example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrependHTTP(tt.in), "PrependHTTP(%q)", tt.in)
	}
}

func TestIsURL(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://www.youtube.com/watch?v=9P6rdqiybaw",
		"http://localhost:3000",
	}
	for _, u := range valid {
		assert.True(t, IsURL(u), u)
	}

	invalid := []string{
		"",
		"example.com",
		"ftp://example.com",
		"mailto:hello@example.com",
		"http://",
		"http://exa mple.com",
		"/relative",
	}
	for _, u := range invalid {
		assert.False(t, IsURL(u), u)
	}
}

func TestNormalizeURL(t *testing.T) {
	u, ok := NormalizeURL("twitter.com/microlinkhq")
	assert.True(t, ok)
	assert.Equal(t, "http://twitter.com/microlinkhq", u)

	_, ok = NormalizeURL("not a url")
	assert.False(t, ok)
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.youtube.com/watch?v=1", "youtube.com"},
		{"open.spotify.com/track/1", "spotify.com"},
		{"news.bbc.co.uk", "bbc.co.uk"},
		{"WWW.Instagram.COM", "instagram.com"},
		{"http://127.0.0.1:8080", ""},
		{"co.uk", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Domain(tt.in), "Domain(%q)", tt.in)
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.youtube.com/watch?v=9P6rdqiybaw", "youtube.com/watch?v=9P6rdqiybaw"},
		{"https://soundcloud.com/beautybrainsp/beauty-brain-swag-bandicoot/", "soundcloud.com/beautybrainsp/beauty-brain-swag-bandicoot"},
		{"http://example.com/", "example.com"},
		{"theverge.com", "theverge.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Humanize(tt.in), "Humanize(%q)", tt.in)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("url", "example.com", Required(), URL()))

	err := Validate("url", "  ", Required(), URL())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "url", fe.Field)
	assert.Equal(t, "This field is required", fe.Message)

	err = Validate("url", "http://exa mple.com", Required(), URL())
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Please enter a valid URL", fe.Message)

	err = Validate("url", strings.Repeat("a", 11), MaxLength(10))
	assert.ErrorIs(t, err, ErrInvalid)
}
