package download

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		path  string
		want  string
	}{
		{"Clip Title", "/tmp/x/Clip_Title.mp4", "Clip Title.mp4"},
		{"Beyoncé – Déjà Vu", "/tmp/x/a.mp4", "Beyonce _ Deja Vu.mp4"},
		{"AC/DC: Live?", "/tmp/x/a.webm", "AC_DC_ Live_.webm"},
		{"  spaced   out  ", "/tmp/x/a.mp3", "spaced out.mp3"},
		{"", "/tmp/x/a.mp3", "download.mp3"},
		{"日本語", "/tmp/x/a.mp4", "___.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.title, tt.path))
		})
	}
}

func TestFilename_Truncates(t *testing.T) {
	name := Filename(strings.Repeat("a", 400), "x.mp4")
	assert.Equal(t, maxFilenameRunes+len(".mp4"), len(name))
}
