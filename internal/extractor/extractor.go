// Package extractor wraps the yt-dlp binary: probing a URL for its formats
// and fetching one selection into a directory. Failures are classified into
// *Error values here so callers never inspect message text.
package extractor

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/vmunix/mediagrab/internal/selector"
)

// OutputTemplate names fetched files after the media title, capped in bytes.
const OutputTemplate = "%(title).150B.%(ext)s"

// Options are passed through to every yt-dlp invocation. Retries and
// FragmentRetries are passed as given, 0 included; a negative value leaves
// yt-dlp's own default.
type Options struct {
	Binary          string
	SocketTimeout   time.Duration
	Retries         int
	FragmentRetries int
	ChunkSize       string
	MergeFormat     string
	AudioFormat     string
	AudioQuality    string
}

// Client runs yt-dlp.
type Client struct {
	opts Options
	log  *slog.Logger
}

// New creates a client.
func New(opts Options, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{opts: opts, log: log}
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	if c.opts.Binary == "" {
		return "yt-dlp"
	}
	return c.opts.Binary
}

func (c *Client) command() *ytdlp.Command {
	cmd := ytdlp.New().NoPlaylist()
	if c.opts.Binary != "" {
		cmd.SetExecutable(c.opts.Binary)
	}
	if c.opts.SocketTimeout > 0 {
		cmd.SocketTimeout(c.opts.SocketTimeout.Seconds())
	}
	return cmd
}

// Probe returns the metadata and format list of url without downloading.
func (c *Client) Probe(ctx context.Context, url string) (*Info, error) {
	start := time.Now()
	res, err := c.command().DumpSingleJSON().Run(ctx, url)
	if err != nil {
		e := classify(ctx, "probe", err, stderrOf(res))
		c.log.Warn("probe failed", "url", url, "kind", e.Kind, "error", e.Msg)
		return nil, e
	}

	info, err := decodeInfo([]byte(res.Stdout))
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: "probe", Msg: err.Error(), Err: err}
	}

	c.log.Debug("probe complete",
		"url", url,
		"title", info.Title,
		"formats", len(info.Formats),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return info, nil
}

// Fetch downloads the selection into dir.
func (c *Client) Fetch(ctx context.Context, url string, sel selector.Selector, dir string) error {
	cmd := c.command().
		Format(sel.String()).
		Output(filepath.Join(dir, OutputTemplate)).
		RestrictFilenames()

	if c.opts.Retries >= 0 {
		cmd.Retries(strconv.Itoa(c.opts.Retries))
	}
	if c.opts.FragmentRetries >= 0 {
		cmd.FragmentRetries(strconv.Itoa(c.opts.FragmentRetries))
	}
	if c.opts.ChunkSize != "" {
		cmd.HTTPChunkSize(c.opts.ChunkSize)
	}

	if sel.Kind == selector.KindAudio {
		cmd.ExtractAudio()
		if c.opts.AudioFormat != "" {
			cmd.AudioFormat(c.opts.AudioFormat)
		}
		if c.opts.AudioQuality != "" {
			cmd.AudioQuality(c.opts.AudioQuality)
		}
	} else if c.opts.MergeFormat != "" {
		cmd.MergeOutputFormat(c.opts.MergeFormat)
	}

	c.log.Debug("fetch started", "url", url, "format", sel.String(), "dir", dir)

	res, err := cmd.Run(ctx, url)
	if err != nil {
		return classify(ctx, "fetch", err, stderrOf(res))
	}
	return nil
}

func stderrOf(res *ytdlp.Result) string {
	if res == nil {
		return ""
	}
	return res.Stderr
}
