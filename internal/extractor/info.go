package extractor

import (
	"encoding/json"
	"fmt"

	"github.com/vmunix/mediagrab/internal/catalog"
)

// Info is the probed metadata of one media item.
type Info struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Uploader   string              `json:"uploader,omitempty"`
	Duration   float64             `json:"duration,omitempty"`
	Thumbnail  string              `json:"thumbnail,omitempty"`
	WebpageURL string              `json:"webpage_url,omitempty"`
	Extractor  string              `json:"extractor,omitempty"`
	Formats    []catalog.RawFormat `json:"formats"`
}

// wireInfo mirrors the extractor's JSON. Numbers may be null or fractional.
type wireInfo struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Uploader     string       `json:"uploader"`
	Duration     *float64     `json:"duration"`
	Thumbnail    string       `json:"thumbnail"`
	WebpageURL   string       `json:"webpage_url"`
	ExtractorKey string       `json:"extractor_key"`
	Type         string       `json:"_type"`
	Formats      []wireFormat `json:"formats"`
	Entries      []wireInfo   `json:"entries"`

	// Single-format extractors report the format at the top level.
	wireFormat
}

type wireFormat struct {
	FormatID       string   `json:"format_id"`
	VCodec         *string  `json:"vcodec"`
	ACodec         *string  `json:"acodec"`
	Height         *float64 `json:"height"`
	Width          *float64 `json:"width"`
	FPS            *float64 `json:"fps"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	ABR            *float64 `json:"abr"`
	TBR            *float64 `json:"tbr"`
	Ext            string   `json:"ext"`
	Protocol       string   `json:"protocol"`
}

func (w wireFormat) raw() catalog.RawFormat {
	return catalog.RawFormat{
		FormatID:       w.FormatID,
		VCodec:         codec(w.VCodec),
		ACodec:         codec(w.ACodec),
		Height:         int(num(w.Height)),
		Width:          int(num(w.Width)),
		FPS:            num(w.FPS),
		Filesize:       int64(num(w.Filesize)),
		FilesizeApprox: int64(num(w.FilesizeApprox)),
		ABR:            num(w.ABR),
		TBR:            num(w.TBR),
		Ext:            w.Ext,
		Protocol:       w.Protocol,
	}
}

// decodeInfo parses the extractor's single-JSON dump.
func decodeInfo(data []byte) (*Info, error) {
	var w wireInfo
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	// A playlist URL probed with --no-playlist can still yield a playlist
	// wrapper; describe its first entry.
	if w.Type == "playlist" && len(w.Formats) == 0 && len(w.Entries) > 0 {
		w = w.Entries[0]
	}

	info := &Info{
		ID:         w.ID,
		Title:      w.Title,
		Uploader:   w.Uploader,
		Duration:   num(w.Duration),
		Thumbnail:  w.Thumbnail,
		WebpageURL: w.WebpageURL,
		Extractor:  w.ExtractorKey,
		Formats:    make([]catalog.RawFormat, 0, len(w.Formats)),
	}
	for _, f := range w.Formats {
		info.Formats = append(info.Formats, f.raw())
	}
	if len(info.Formats) == 0 && w.FormatID != "" {
		info.Formats = append(info.Formats, w.wireFormat.raw())
	}

	return info, nil
}

// codec maps a null or missing codec to catalog.CodecUnknown. Progressive
// formats from several sites leave both codecs unset.
func codec(p *string) string {
	if p == nil || *p == "" {
		return catalog.CodecUnknown
	}
	return *p
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
