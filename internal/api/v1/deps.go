package v1

import (
	"context"
	"errors"

	"github.com/vmunix/mediagrab/internal/download"
	"github.com/vmunix/mediagrab/internal/extractor"
	"github.com/vmunix/mediagrab/internal/urlcheck"
)

// ErrMissingDependency is returned when a required dependency is nil.
var ErrMissingDependency = errors.New("missing required dependency")

// Prober returns metadata and formats for a URL.
type Prober interface {
	Probe(ctx context.Context, url string) (*extractor.Info, error)
}

// Downloader runs a download request to completion.
type Downloader interface {
	Download(ctx context.Context, req download.Request) (*download.Result, error)
}

// CacheCounter reports the number of cached probe results.
type CacheCounter interface {
	Count(ctx context.Context) (int, error)
}

// ServerDeps contains all dependencies for the API server.
type ServerDeps struct {
	// Required
	Validator  *urlcheck.Validator
	Prober     Prober
	Downloader Downloader

	// Optional (nil when the probe cache is disabled)
	Cache CacheCounter
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Validator == nil {
		return errors.Join(ErrMissingDependency, errors.New("validator is required"))
	}
	if d.Prober == nil {
		return errors.Join(ErrMissingDependency, errors.New("prober is required"))
	}
	if d.Downloader == nil {
		return errors.Join(ErrMissingDependency, errors.New("downloader is required"))
	}
	return nil
}
