package urlcheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"youtube with www", "https://www.youtube.com/watch?v=x", true},
		{"youtube short", "https://youtu.be/x", true},
		{"mobile subdomain", "https://m.youtube.com/watch?v=x", true},
		{"uppercase host", "https://WWW.YOUTUBE.COM/watch?v=x", true},
		{"host with port", "https://vimeo.com:443/123", true},
		{"x.com", "https://x.com/user/status/1", true},
		{"fb.watch", "https://fb.watch/abc/", true},
		{"no scheme", "youtu.be/x", true},
		{"surrounding whitespace", "  https://www.tiktok.com/@u/video/1  ", true},
		{"wrong suffix", "https://vimeo.co/x", false},
		{"lookalike prefix", "https://notyoutube.com/watch?v=x", false},
		{"unknown host", "https://example.org/video", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := Validate(tt.raw)
			assert.Equal(t, tt.ok, ok, "message: %s", msg)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestValidate_EmptyMessage(t *testing.T) {
	ok, msg := Validate("")
	assert.False(t, ok)
	assert.Equal(t, MsgEmpty, msg)
}

func TestValidate_ParseError(t *testing.T) {
	ok, msg := Validate("https://[::1")
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(msg, "Invalid URL: "), msg)
}

func TestCheck_Platform(t *testing.T) {
	v := New()

	r := v.Check("https://www.instagram.com/reel/abc/")
	assert.True(t, r.OK)
	assert.Equal(t, "instagram.com", r.Host)
	assert.Equal(t, "instagram.com", r.Domain)
	assert.Equal(t, "Instagram", r.Platform)
	assert.Equal(t, "Valid Instagram URL", r.Message)

	r = v.Check("https://twitter.com/u/status/1")
	assert.Equal(t, "Twitter", r.Platform)
}

func TestCheck_NormalizedURL(t *testing.T) {
	r := New().Check("  vimeo.com/76979871 ")
	require.True(t, r.OK)
	assert.Equal(t, "https://vimeo.com/76979871", r.URL)

	r = New().Check(" https://youtu.be/abc\n")
	require.True(t, r.OK)
	assert.Equal(t, "https://youtu.be/abc", r.URL)

	r = New().Check("example.com/v")
	assert.False(t, r.OK)
	assert.Empty(t, r.URL)
}

func TestCheck_Suggestion(t *testing.T) {
	r := New().Check("https://vimeo.co/x")
	assert.False(t, r.OK)
	assert.Equal(t, "Unsupported platform: vimeo.co (did you mean vimeo.com?)", r.Message)

	r = New().Check("https://zzzzzzzzzzzz.qq/x")
	assert.Equal(t, "Unsupported platform: zzzzzzzzzzzz.qq", r.Message)
}

func TestNew_ExtraDomains(t *testing.T) {
	v := New("www.Example.org", "", "youtube.com")

	assert.Len(t, v.Domains(), len(DefaultDomains)+1)

	r := v.Check("https://media.example.org/clip")
	assert.True(t, r.OK)
	assert.Equal(t, "example.org", r.Domain)
	assert.Equal(t, "example.org", r.Platform)

	ok, _ := Validate("https://media.example.org/clip")
	assert.False(t, ok, "default validator must not see extra domains")
}

func TestPlatformName(t *testing.T) {
	assert.Equal(t, "Twitter", PlatformName("x.com"))
	assert.Equal(t, "example.org", PlatformName("example.org"))
}
