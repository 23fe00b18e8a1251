// Package catalog turns the raw format list reported by the extractor into
// the offers presented to the user.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// AudioOnlyLabel is the quality and display label of the audio offer.
const AudioOnlyLabel = "Audio Only (MP3)"

// Codec values with special meaning. A codec the extractor could not
// identify is still a stream; only CodecNone (or an unset field) is absent.
const (
	CodecNone    = "none"
	CodecUnknown = "unknown"
)

// mergeOverhead inflates a video-only size when no audio size is known.
const mergeOverhead = 1.1

// RawFormat is one encoding reported by the extractor.
// Zero numeric fields mean the value was not reported.
type RawFormat struct {
	FormatID       string  `json:"format_id"`
	VCodec         string  `json:"vcodec,omitempty"`
	ACodec         string  `json:"acodec,omitempty"`
	Height         int     `json:"height,omitempty"`
	Width          int     `json:"width,omitempty"`
	FPS            float64 `json:"fps,omitempty"`
	Filesize       int64   `json:"filesize,omitempty"`
	FilesizeApprox int64   `json:"filesize_approx,omitempty"`
	ABR            float64 `json:"abr,omitempty"`
	TBR            float64 `json:"tbr,omitempty"`
	Ext            string  `json:"ext,omitempty"`
	Protocol       string  `json:"protocol,omitempty"`
}

// HasVideo reports whether the format carries a video stream.
func (f RawFormat) HasVideo() bool { return codecPresent(f.VCodec) }

// HasAudio reports whether the format carries an audio stream.
func (f RawFormat) HasAudio() bool { return codecPresent(f.ACodec) }

// Size returns the exact size if known, else the approximate one, else 0.
func (f RawFormat) Size() int64 {
	if f.Filesize > 0 {
		return f.Filesize
	}
	return f.FilesizeApprox
}

func (f RawFormat) bitrate() float64 {
	if f.ABR > 0 {
		return f.ABR
	}
	return f.TBR
}

func (f RawFormat) frameRate() int {
	if f.FPS <= 0 {
		return 0
	}
	return int(f.FPS + 0.5)
}

// fragmentedHLS reports HLS variants that are dropped from the video-only group.
func (f RawFormat) fragmentedHLS() bool {
	return f.Protocol == "m3u8_native" && strings.Contains(f.FormatID, "hls")
}

func codecPresent(codec string) bool {
	return codec != "" && codec != CodecNone
}

// Offer is one downloadable choice presented to the user.
type Offer struct {
	FormatID      string   `json:"format_id"`
	Quality       string   `json:"quality"`
	Label         string   `json:"label"`
	Height        int      `json:"height"`
	Width         int      `json:"width"`
	FPS           int      `json:"fps"`
	NeedsMerge    bool     `json:"needs_merge"`
	Size          *int64   `json:"size,omitempty"`
	SizeEstimated bool     `json:"size_estimated"`
	Category      Category `json:"category"`
	Ext           string   `json:"ext,omitempty"`
}

// SizeLabel renders the size for display, or "unknown".
func (o Offer) SizeLabel() string {
	if o.Size == nil {
		return "unknown"
	}
	s := humanize.Bytes(uint64(*o.Size))
	if o.SizeEstimated {
		return "~" + s
	}
	return s
}

// Build partitions, deduplicates and orders raw formats into offers.
// Quality labels are unique in the result; a combined format wins over a
// video-only one with the same label, and at most one audio offer is
// appended last.
func Build(raw []RawFormat) []Offer {
	var combined, videoOnly, audioOnly []RawFormat
	for _, f := range raw {
		switch {
		case f.HasVideo() && f.HasAudio():
			if f.Height > 0 {
				combined = append(combined, f)
			}
		case f.HasVideo():
			if f.Height > 0 && !f.fragmentedHLS() {
				videoOnly = append(videoOnly, f)
			}
		case f.HasAudio():
			audioOnly = append(audioOnly, f)
		}
	}

	sortByQuality(combined)
	sortByQuality(videoOnly)
	bestAudio, haveAudio := pickBestAudio(audioOnly)

	offers := make([]Offer, 0, len(combined)+len(videoOnly)+1)
	seen := make(map[string]bool)

	for _, f := range combined {
		q := qualityLabel(f.Height, f.frameRate())
		if seen[q] {
			continue
		}
		seen[q] = true

		o := videoOffer(f, q)
		o.Label = q + " (ready to download)"
		if size := f.Size(); size > 0 {
			o.Size = &size
		}
		offers = append(offers, o)
	}

	for _, f := range videoOnly {
		q := qualityLabel(f.Height, f.frameRate())
		if seen[q] {
			continue
		}
		seen[q] = true

		o := videoOffer(f, q)
		o.Label = q + " (video + audio)"
		o.NeedsMerge = true
		o.Size = estimateMergedSize(f, bestAudio, haveAudio)
		o.SizeEstimated = o.Size != nil
		offers = append(offers, o)
	}

	if haveAudio {
		o := Offer{
			FormatID: bestAudio.FormatID,
			Quality:  AudioOnlyLabel,
			Label:    AudioOnlyLabel,
			Category: CategoryAudio,
			Ext:      bestAudio.Ext,
		}
		if size := bestAudio.Size(); size > 0 {
			o.Size = &size
		}
		offers = append(offers, o)
	}

	return offers
}

func videoOffer(f RawFormat, quality string) Offer {
	return Offer{
		FormatID: f.FormatID,
		Quality:  quality,
		Height:   f.Height,
		Width:    f.Width,
		FPS:      f.frameRate(),
		Category: CategoryFor(f.Height),
		Ext:      f.Ext,
	}
}

// qualityLabel renders "1080p", or "1080p60" above 30 fps.
func qualityLabel(height, fps int) string {
	if fps > 30 {
		return fmt.Sprintf("%dp%d", height, fps)
	}
	return fmt.Sprintf("%dp", height)
}

// sortByQuality orders formats by height, then frame rate, descending.
func sortByQuality(formats []RawFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		if formats[i].Height != formats[j].Height {
			return formats[i].Height > formats[j].Height
		}
		return formats[i].frameRate() > formats[j].frameRate()
	})
}

// pickBestAudio returns the audio-only format with the highest bitrate.
func pickBestAudio(formats []RawFormat) (RawFormat, bool) {
	if len(formats) == 0 {
		return RawFormat{}, false
	}
	best := formats[0]
	for _, f := range formats[1:] {
		if f.bitrate() > best.bitrate() {
			best = f
		}
	}
	return best, true
}

func estimateMergedSize(video, audio RawFormat, haveAudio bool) *int64 {
	videoSize := video.Size()
	if videoSize <= 0 {
		return nil
	}
	var total int64
	if haveAudio && audio.Size() > 0 {
		total = videoSize + audio.Size()
	} else {
		total = int64(float64(videoSize) * mergeOverhead)
	}
	return &total
}
