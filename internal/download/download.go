// Package download turns a format choice into one media file on disk.
//
// Each attempt runs in its own temporary directory. A failed attempt always
// removes its directory. A successful attempt hands its directory to the
// caller through Result, which deletes it once the file has been read.
package download

//go:generate mockgen -destination=mocks/mock_download.go -package=mocks . Fetcher,Prober

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/mediagrab/internal/extractor"
	"github.com/vmunix/mediagrab/internal/selector"
)

// Fetcher downloads one selection of url into dir.
type Fetcher interface {
	Fetch(ctx context.Context, url string, sel selector.Selector, dir string) error
}

// Prober returns metadata for url. Used only for the title.
type Prober interface {
	Probe(ctx context.Context, url string) (*extractor.Info, error)
}

// forgetter is implemented by probers that cache their results. A download
// that ends unavailable means the cached formats are stale.
type forgetter interface {
	Forget(ctx context.Context, url string) error
}

// Request describes what the user asked for.
type Request struct {
	URL      string
	FormatID string
	Quality  string
	Kind     selector.Kind
	// Combined is set when FormatID already carries audio.
	Combined bool
}

// Result is a finished download. The caller owns the file and must call
// Cleanup, or Close the reader returned by Open.
type Result struct {
	Path      string
	Title     string
	Size      int64
	Selector  selector.Selector
	Attempts  int
	RequestID string

	dir  string
	once sync.Once
	err  error
}

// Filename is the name to offer the client for this file.
func (r *Result) Filename() string {
	return Filename(r.Title, r.Path)
}

// Open returns a reader over the file. Closing it removes the file and its
// directory. If the file cannot be opened the directory is removed at once.
func (r *Result) Open() (io.ReadCloser, error) {
	f, err := os.Open(r.Path)
	if err != nil {
		_ = r.Cleanup()
		return nil, fmt.Errorf("open result: %w", err)
	}
	return &deleteOnCloseReader{File: f, cleanup: r.Cleanup}, nil
}

// Cleanup removes the result's directory. Safe to call more than once.
func (r *Result) Cleanup() error {
	r.once.Do(func() {
		if r.dir != "" {
			r.err = os.RemoveAll(r.dir)
		}
	})
	return r.err
}

type deleteOnCloseReader struct {
	*os.File
	cleanup func() error
}

func (d *deleteOnCloseReader) Close() error {
	err := d.File.Close()
	if cerr := d.cleanup(); err == nil {
		err = cerr
	}
	return err
}

// Orchestrator runs the attempt loop for a Request.
type Orchestrator struct {
	fetcher Fetcher
	prober  Prober
	workDir string
	log     *slog.Logger
}

// NewOrchestrator creates an orchestrator. prober may be nil, in which case
// titles come from the downloaded file's name.
func NewOrchestrator(fetcher Fetcher, prober Prober, workDir string, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		fetcher: fetcher,
		prober:  prober,
		workDir: workDir,
		log:     log,
	}
}

// Download fetches req, trying the fallback selector only when the primary
// fails with a retryable kind. The last error is returned when every
// attempt fails.
func (o *Orchestrator) Download(ctx context.Context, req Request) (*Result, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return nil, ErrNoURL
	}

	if err := os.MkdirAll(o.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkDir, err)
	}

	id := uuid.NewString()
	log := o.log.With("request_id", id, "url", url)

	primary, fallback := selector.Plan(req.FormatID, req.Quality, req.Kind, req.Combined)
	plan := []selector.Selector{primary}
	if fallback != nil && *fallback != primary {
		plan = append(plan, *fallback)
	}

	var lastErr error
	for i, sel := range plan {
		n := i + 1
		start := time.Now()

		res, err := o.attempt(ctx, id, n, url, sel)
		if err == nil {
			res.Title = o.title(ctx, url, res.Path)
			log.Info("download complete",
				"attempt", n,
				"format", sel.String(),
				"size", res.Size,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return res, nil
		}

		lastErr = err
		kind := extractor.KindOf(err)
		log.Warn("download attempt failed", "attempt", n, "format", sel.String(), "kind", kind, "error", err)
		if !kind.Retryable() {
			break
		}
	}

	if extractor.KindOf(lastErr) == extractor.KindUnavailable {
		if f, ok := o.prober.(forgetter); ok {
			if err := f.Forget(ctx, url); err != nil {
				log.Warn("failed to drop cached probe", "error", err)
			}
		}
	}

	return nil, lastErr
}

// attempt runs one fetch in a fresh directory. The directory is removed on
// every path out of here except a successful return.
func (o *Orchestrator) attempt(ctx context.Context, id string, n int, url string, sel selector.Selector) (*Result, error) {
	dir, err := os.MkdirTemp(o.workDir, fmt.Sprintf("%s-%d-", id, n))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkDir, err)
	}

	keep := false
	defer func() {
		if !keep {
			o.removeDir(dir)
		}
	}()

	if err := o.fetcher.Fetch(ctx, url, sel, dir); err != nil {
		return nil, err
	}

	path, size, err := singleOutput(dir)
	if err != nil {
		return nil, err
	}

	keep = true
	return &Result{
		Path:      path,
		Size:      size,
		Selector:  sel,
		Attempts:  n,
		RequestID: id,
		dir:       dir,
	}, nil
}

// singleOutput returns the one non-empty regular file in dir.
func singleOutput(dir string) (string, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("read attempt dir: %w", err)
	}

	var files []os.DirEntry
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e)
		}
	}
	if len(files) != 1 {
		return "", 0, &extractor.Error{
			Kind: extractor.KindEmptyOutput,
			Op:   "fetch",
			Msg:  fmt.Sprintf("expected one output file, found %d", len(files)),
		}
	}

	path := filepath.Join(dir, files[0].Name())
	fi, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat output: %w", err)
	}
	if fi.Size() == 0 {
		return "", 0, &extractor.Error{
			Kind: extractor.KindEmptyOutput,
			Op:   "fetch",
			Msg:  "output file is empty",
		}
	}
	return path, fi.Size(), nil
}

func (o *Orchestrator) title(ctx context.Context, url, path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if o.prober == nil {
		return stem
	}

	info, err := o.prober.Probe(ctx, url)
	if err != nil || info == nil || strings.TrimSpace(info.Title) == "" {
		if err != nil && !errors.Is(err, context.Canceled) {
			o.log.Debug("title probe failed, using file name", "url", url, "error", err)
		}
		return stem
	}
	return info.Title
}

func (o *Orchestrator) removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		o.log.Warn("failed to remove attempt dir", "dir", dir, "error", err)
	}
}
