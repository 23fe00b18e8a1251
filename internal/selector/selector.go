// Package selector describes which encoding to fetch. Selectors are plain
// values inside the program and are rendered to the extractor's format
// syntax only by String.
package selector

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the kind of media requested.
type Kind int

const (
	KindVideo Kind = iota
	KindAudio
)

func (k Kind) String() string {
	if k == KindAudio {
		return "audio"
	}
	return "video"
}

// ParseKind maps "audio" (or "mp3") to KindAudio and anything else to KindVideo.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "audio", "mp3":
		return KindAudio
	default:
		return KindVideo
	}
}

// Selector is one format choice.
type Selector struct {
	Kind Kind
	// FormatID pins an exact extractor format.
	FormatID string
	// PreferCombined means FormatID already carries audio and must not be
	// merged with a separate audio stream.
	PreferCombined bool
	// MaxHeight bounds the video height; 0 means unbounded.
	MaxHeight int
	// Worst selects the lowest quality instead of the highest.
	Worst bool
}

// String renders the selector in the extractor's format syntax.
func (s Selector) String() string {
	switch {
	case s.Kind == KindAudio:
		return "bestaudio/best"
	case s.FormatID != "" && s.PreferCombined:
		return s.FormatID
	case s.FormatID != "":
		return fmt.Sprintf("%s+bestaudio/%s", s.FormatID, s.FormatID)
	case s.Worst:
		return "worstvideo+worstaudio/worst"
	case s.MaxHeight > 0:
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", s.MaxHeight, s.MaxHeight)
	default:
		return "bestvideo+bestaudio/best"
	}
}

var heightPattern = regexp.MustCompile(`^(\d+)p`)

// ParseHeight extracts N from a quality label shaped like "<N>p...".
func ParseHeight(quality string) (int, bool) {
	m := heightPattern.FindStringSubmatch(strings.TrimSpace(quality))
	if m == nil {
		return 0, false
	}
	h, err := strconv.Atoi(m[1])
	if err != nil || h <= 0 {
		return 0, false
	}
	return h, true
}

// Plan builds the primary selector and, when one applies, a fallback to try
// if the primary format turns out to be unavailable. The first matching
// rule wins: audio kind, pinned format, "best", "worst", "<N>p", default.
func Plan(formatID, quality string, kind Kind, combined bool) (Selector, *Selector) {
	formatID = strings.TrimSpace(formatID)
	quality = strings.ToLower(strings.TrimSpace(quality))

	if kind == KindAudio {
		return Selector{Kind: KindAudio}, nil
	}

	if formatID != "" {
		primary := Selector{FormatID: formatID, PreferCombined: combined}
		if h, ok := ParseHeight(quality); ok {
			return primary, &Selector{MaxHeight: h}
		}
		return primary, nil
	}

	switch quality {
	case "best":
		return Selector{}, nil
	case "worst":
		return Selector{Worst: true}, nil
	}

	if h, ok := ParseHeight(quality); ok {
		return Selector{MaxHeight: h}, nil
	}
	return Selector{}, nil
}
