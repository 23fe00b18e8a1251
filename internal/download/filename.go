package download

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxFilenameRunes = 150

// Filename builds an ASCII download name from title, keeping the extension
// of path. Accents are folded; other non-ASCII and unsafe runes become "_".
func Filename(title, path string) string {
	ext := filepath.Ext(path)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	space := false
	for _, r := range folded {
		switch {
		case unicode.IsSpace(r):
			if b.Len() > 0 && !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		case r > unicode.MaxASCII, unicode.IsControl(r), strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
		space = false
	}

	name := strings.Trim(b.String(), " .")
	if rs := []rune(name); len(rs) > maxFilenameRunes {
		name = strings.TrimSpace(string(rs[:maxFilenameRunes]))
	}
	if name == "" {
		name = "download"
	}
	return name + ext
}
