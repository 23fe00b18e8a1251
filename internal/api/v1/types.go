package v1

import "github.com/vmunix/mediagrab/internal/catalog"

// mediaRequest is the body of validate, info and download requests.
type mediaRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Combined bool   `json:"combined,omitempty"`
}

// validateResponse is the response for POST /validate.
type validateResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	URL      string `json:"url,omitempty"`
	Platform string `json:"platform,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Host     string `json:"host,omitempty"`
}

// offerResponse is one entry of the offer list.
type offerResponse struct {
	catalog.Offer
	SizeLabel string `json:"size_label"`
}

// infoResponse is the response for POST /info.
type infoResponse struct {
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	Uploader  string          `json:"uploader,omitempty"`
	Duration  float64         `json:"duration,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Platform  string          `json:"platform"`
	Offers    []offerResponse `json:"offers"`
}

type platformResponse struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
}

type listPlatformsResponse struct {
	Platforms []platformResponse `json:"platforms"`
}

type cacheStatus struct {
	Enabled bool `json:"enabled"`
	Entries int  `json:"entries"`
}

// statusResponse is the response for GET /status.
type statusResponse struct {
	Status    string      `json:"status"`
	Version   string      `json:"version"`
	Extractor string      `json:"extractor"`
	Platforms int         `json:"platforms"`
	Cache     cacheStatus `json:"cache"`
}
