package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/mediagrab/internal/catalog"
	"github.com/vmunix/mediagrab/internal/download"
	"github.com/vmunix/mediagrab/internal/download/mocks"
	"github.com/vmunix/mediagrab/internal/extractor"
	"github.com/vmunix/mediagrab/internal/selector"
	"github.com/vmunix/mediagrab/internal/urlcheck"
)

const testURL = "https://www.youtube.com/watch?v=abc"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProber struct {
	info  *extractor.Info
	err   error
	got   string
	calls int
}

func (p *fakeProber) Probe(ctx context.Context, url string) (*extractor.Info, error) {
	p.calls++
	p.got = url
	return p.info, p.err
}

type fakeDownloader struct {
	res   *download.Result
	err   error
	got   download.Request
	calls int
}

func (d *fakeDownloader) Download(ctx context.Context, req download.Request) (*download.Result, error) {
	d.calls++
	d.got = req
	return d.res, d.err
}

type fakeCache struct {
	n   int
	err error
}

func (c *fakeCache) Count(ctx context.Context) (int, error) {
	return c.n, c.err
}

func newTestServer(t *testing.T, deps ServerDeps) *http.ServeMux {
	t.Helper()
	if deps.Validator == nil {
		deps.Validator = urlcheck.New()
	}
	if deps.Prober == nil {
		deps.Prober = &fakeProber{}
	}
	if deps.Downloader == nil {
		deps.Downloader = &fakeDownloader{}
	}
	srv, err := New(deps, Config{Version: "test", ExtractorBinary: "yt-dlp"}, testLogger())
	require.NoError(t, err)

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func postForm(mux http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestNew_MissingDependency(t *testing.T) {
	_, err := New(ServerDeps{Validator: urlcheck.New()}, Config{}, nil)
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestValidate(t *testing.T) {
	mux := newTestServer(t, ServerDeps{})

	tests := []struct {
		name     string
		url      string
		wantOK   bool
		wantMsg  string
		platform string
	}{
		{"youtube", testURL, true, "Valid YouTube URL", "YouTube"},
		{"empty", "   ", false, urlcheck.MsgEmpty, ""},
		{"unsupported", "https://example.com/v/1", false, "Unsupported platform: example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, mux, "/api/v1/validate", mediaRequest{URL: tt.url})
			require.Equal(t, http.StatusOK, w.Code)

			var resp validateResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantOK, resp.OK)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.Equal(t, tt.platform, resp.Platform)
			if tt.wantOK {
				assert.Equal(t, tt.url, resp.URL)
				assert.Equal(t, "youtube.com", resp.Domain)
			}
		})
	}
}

func TestValidate_LegacyFormField(t *testing.T) {
	mux := newTestServer(t, ServerDeps{})

	w := postForm(mux, "/api/v1/validate", url.Values{"facebookLink": {"https://fb.watch/xyz"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp validateResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "Facebook", resp.Platform)
}

func TestValidate_BadBody(t *testing.T) {
	mux := newTestServer(t, ServerDeps{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidRequest, decodeError(t, w).Code)
}

func TestValidate_WrongMethod(t *testing.T) {
	mux := newTestServer(t, ServerDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/validate", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestInfo(t *testing.T) {
	prober := &fakeProber{info: &extractor.Info{
		Title:    "Example Clip",
		Uploader: "someone",
		Duration: 212,
		Formats: []catalog.RawFormat{
			{FormatID: "137", VCodec: "avc1", ACodec: "none", Height: 1080, Width: 1920, FPS: 30, Filesize: 40_000_000},
			{FormatID: "22", VCodec: "avc1", ACodec: "mp4a", Height: 720, Width: 1280, FPS: 30, Filesize: 20_000_000},
			{FormatID: "140", VCodec: "none", ACodec: "mp4a", ABR: 128, Filesize: 5_000_000},
		},
	}}
	mux := newTestServer(t, ServerDeps{Prober: prober})

	w := postJSON(t, mux, "/api/v1/info", mediaRequest{URL: testURL})
	require.Equal(t, http.StatusOK, w.Code)

	var resp infoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Example Clip", resp.Title)
	assert.Equal(t, "YouTube", resp.Platform)
	require.Len(t, resp.Offers, 3)

	assert.Equal(t, "1080p", resp.Offers[0].Quality)
	assert.True(t, resp.Offers[0].NeedsMerge)
	assert.Equal(t, "~45 MB", resp.Offers[0].SizeLabel)

	assert.Equal(t, "720p", resp.Offers[1].Quality)
	assert.False(t, resp.Offers[1].NeedsMerge)

	assert.Equal(t, catalog.AudioOnlyLabel, resp.Offers[2].Quality)
	assert.Equal(t, catalog.CategoryAudio, resp.Offers[2].Category)
}

func TestInfo_NormalizesURL(t *testing.T) {
	prober := &fakeProber{info: &extractor.Info{Title: "Clip"}}
	mux := newTestServer(t, ServerDeps{Prober: prober})

	w := postJSON(t, mux, "/api/v1/info", mediaRequest{URL: "  vimeo.com/76979871 "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://vimeo.com/76979871", prober.got)

	var resp infoResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "https://vimeo.com/76979871", resp.URL)
	assert.Equal(t, "Vimeo", resp.Platform)
}

func TestInfo_InvalidURL(t *testing.T) {
	prober := &fakeProber{}
	mux := newTestServer(t, ServerDeps{Prober: prober})

	w := postJSON(t, mux, "/api/v1/info", mediaRequest{URL: "https://example.com/x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidURL, decodeError(t, w).Code)
	assert.Zero(t, prober.calls, "prober must not run for rejected URLs")
}

func TestInfo_ProbeFailed(t *testing.T) {
	prober := &fakeProber{err: &extractor.Error{Kind: extractor.KindUnavailable, Op: "probe", Msg: "Video unavailable"}}
	mux := newTestServer(t, ServerDeps{Prober: prober})

	w := postJSON(t, mux, "/api/v1/info", mediaRequest{URL: testURL})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, CodeExtractionFailed, resp.Code)
	assert.Equal(t, "Video unavailable", resp.Error)
}

func TestDownload_StreamsAndCleansUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	workDir := t.TempDir()

	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Fetch(gomock.Any(), testURL, selector.Selector{FormatID: "22", PreferCombined: true}, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ selector.Selector, dir string) error {
			return os.WriteFile(filepath.Join(dir, "Clip_Title.mp4"), []byte("media-bytes"), 0o644)
		})

	orch := download.NewOrchestrator(fetcher, nil, workDir, testLogger())
	mux := newTestServer(t, ServerDeps{Downloader: orch})

	w := postJSON(t, mux, "/api/v1/download", mediaRequest{
		URL:      testURL,
		FormatID: "22",
		Quality:  "720p",
		Combined: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "media-bytes", w.Body.String())
	assert.Equal(t, "11", w.Header().Get("Content-Length"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Clip_Title.mp4")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "download dir should be removed after streaming")
}

func TestDownload_FormRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(path, []byte("id3"), 0o644))

	dl := &fakeDownloader{res: &download.Result{Path: path, Title: "Song", Size: 3}}
	mux := newTestServer(t, ServerDeps{Downloader: dl})

	w := postForm(mux, "/api/v1/download", url.Values{
		"url":       {testURL},
		"format_id": {"140"},
		"kind":      {"audio"},
		"combined":  {"false"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, selector.KindAudio, dl.got.Kind)
	assert.Equal(t, "140", dl.got.FormatID)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Song.mp3")
	assert.Equal(t, "id3", w.Body.String())
}

func TestDownload_NormalizesURL(t *testing.T) {
	dl := &fakeDownloader{err: &extractor.Error{Kind: extractor.KindUnavailable, Op: "fetch", Msg: "gone"}}
	mux := newTestServer(t, ServerDeps{Downloader: dl})

	w := postJSON(t, mux, "/api/v1/download", mediaRequest{URL: "  vimeo.com/76979871 ", FormatID: "http-720"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "https://vimeo.com/76979871", dl.got.URL)
}

func TestDownload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{
			name:     "timeout",
			err:      &extractor.Error{Kind: extractor.KindTimeout, Op: "fetch", Msg: "read timed out"},
			wantCode: http.StatusGatewayTimeout,
			wantErr:  CodeDownloadTimeout,
		},
		{
			name:     "merge failure",
			err:      &extractor.Error{Kind: extractor.KindMergeFailed, Op: "fetch", Msg: "Conversion failed!"},
			wantCode: http.StatusBadGateway,
			wantErr:  CodeDownloadFailed,
		},
		{
			name:     "work dir",
			err:      errors.Join(download.ErrWorkDir, errors.New("read-only file system")),
			wantCode: http.StatusInternalServerError,
			wantErr:  CodeDownloadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestServer(t, ServerDeps{Downloader: &fakeDownloader{err: tt.err}})

			w := postJSON(t, mux, "/api/v1/download", mediaRequest{URL: testURL})
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, w).Code)
		})
	}
}

func TestDownload_InvalidURL(t *testing.T) {
	dl := &fakeDownloader{}
	mux := newTestServer(t, ServerDeps{Downloader: dl})

	w := postJSON(t, mux, "/api/v1/download", mediaRequest{URL: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeError(t, w)
	assert.Equal(t, CodeInvalidURL, resp.Code)
	assert.Equal(t, urlcheck.MsgEmpty, resp.Error)
	assert.Zero(t, dl.calls)
}

func TestListPlatforms(t *testing.T) {
	mux := newTestServer(t, ServerDeps{Validator: urlcheck.New("odysee.com")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/platforms", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp listPlatformsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Platforms, len(urlcheck.DefaultDomains)+1)
	assert.Equal(t, platformResponse{Domain: "youtube.com", Name: "YouTube"}, resp.Platforms[0])
	assert.Equal(t, platformResponse{Domain: "odysee.com", Name: "odysee.com"}, resp.Platforms[len(resp.Platforms)-1])
}

func TestGetStatus(t *testing.T) {
	mux := newTestServer(t, ServerDeps{Cache: &fakeCache{n: 4}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, "yt-dlp", resp.Extractor)
	assert.True(t, resp.Cache.Enabled)
	assert.Equal(t, 4, resp.Cache.Entries)
}

func TestGetStatus_NoCache(t *testing.T) {
	mux := newTestServer(t, ServerDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.Cache.Enabled)
}
