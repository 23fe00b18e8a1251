// Package v1 implements the JSON API.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/vmunix/mediagrab/internal/catalog"
	"github.com/vmunix/mediagrab/internal/download"
	"github.com/vmunix/mediagrab/internal/extractor"
	"github.com/vmunix/mediagrab/internal/selector"
	"github.com/vmunix/mediagrab/internal/urlcheck"
)

// Error codes returned in errorResponse.Code.
const (
	CodeInvalidURL       = "INVALID_URL"
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeDownloadFailed   = "DOWNLOAD_FAILED"
	CodeDownloadTimeout  = "DOWNLOAD_TIMEOUT"
)

// Config holds API server configuration.
type Config struct {
	Version         string
	ExtractorBinary string
}

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	cfg  Config
	log  *slog.Logger
}

// New creates a new v1 API server.
func New(deps ServerDeps, cfg Config, log *slog.Logger) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, cfg: cfg, log: log}, nil
}

// RegisterRoutes registers API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/validate", s.validate)
	mux.HandleFunc("POST /api/v1/info", s.info)
	mux.HandleFunc("POST /api/v1/download", s.download)

	// System
	mux.HandleFunc("GET /api/v1/platforms", s.listPlatforms)
	mux.HandleFunc("GET /api/v1/status", s.getStatus)
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// errorMessage prefers the classified reason over the wrapped chain.
func errorMessage(err error) string {
	var e *extractor.Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return err.Error()
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	res := s.deps.Validator.Check(req.URL)
	writeJSON(w, http.StatusOK, validateResponse{
		OK:       res.OK,
		Message:  res.Message,
		URL:      res.URL,
		Platform: res.Platform,
		Domain:   res.Domain,
		Host:     res.Host,
	})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	check := s.deps.Validator.Check(req.URL)
	if !check.OK {
		writeError(w, http.StatusBadRequest, CodeInvalidURL, check.Message)
		return
	}

	info, err := s.deps.Prober.Probe(r.Context(), check.URL)
	if err != nil {
		s.log.Warn("probe failed", "url", check.URL, "kind", extractor.KindOf(err), "error", err)
		writeError(w, http.StatusBadGateway, CodeExtractionFailed, errorMessage(err))
		return
	}

	offers := catalog.Build(info.Formats)
	resp := infoResponse{
		URL:       check.URL,
		Title:     info.Title,
		Uploader:  info.Uploader,
		Duration:  info.Duration,
		Thumbnail: info.Thumbnail,
		Platform:  check.Platform,
		Offers:    make([]offerResponse, len(offers)),
	}
	for i, o := range offers {
		resp.Offers[i] = offerResponse{Offer: o, SizeLabel: o.SizeLabel()}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	check := s.deps.Validator.Check(req.URL)
	if !check.OK {
		writeError(w, http.StatusBadRequest, CodeInvalidURL, check.Message)
		return
	}

	res, err := s.deps.Downloader.Download(r.Context(), download.Request{
		URL:      check.URL,
		FormatID: req.FormatID,
		Quality:  req.Quality,
		Kind:     selector.ParseKind(req.Kind),
		Combined: req.Combined,
	})
	if err != nil {
		switch {
		case extractor.KindOf(err) == extractor.KindTimeout, errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, CodeDownloadTimeout, errorMessage(err))
		case errors.Is(err, download.ErrWorkDir):
			writeError(w, http.StatusInternalServerError, CodeDownloadFailed, err.Error())
		default:
			writeError(w, http.StatusBadGateway, CodeDownloadFailed, errorMessage(err))
		}
		return
	}

	rc, err := res.Open()
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeDownloadFailed, err.Error())
		return
	}
	defer func() {
		if err := rc.Close(); err != nil {
			s.log.Warn("failed to clean up download", "request_id", res.RequestID, "error", err)
		}
	}()

	contentType := mime.TypeByExtension(filepath.Ext(res.Path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": res.Filename(),
	}))
	w.Header().Set("Content-Length", strconv.FormatInt(res.Size, 10))
	w.Header().Set("X-Request-Id", res.RequestID)
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, rc)
	if err != nil {
		s.log.Warn("stream interrupted", "request_id", res.RequestID, "sent", n, "error", err)
		return
	}
	s.log.Info("download served",
		"request_id", res.RequestID,
		"title", res.Title,
		"bytes", n,
		"attempts", res.Attempts,
	)
}

func (s *Server) listPlatforms(w http.ResponseWriter, r *http.Request) {
	domains := s.deps.Validator.Domains()
	resp := listPlatformsResponse{Platforms: make([]platformResponse, len(domains))}
	for i, d := range domains {
		resp.Platforms[i] = platformResponse{Domain: d, Name: urlcheck.PlatformName(d)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:    "ok",
		Version:   s.cfg.Version,
		Extractor: s.cfg.ExtractorBinary,
		Platforms: len(s.deps.Validator.Domains()),
	}

	if s.deps.Cache != nil {
		resp.Cache.Enabled = true
		n, err := s.deps.Cache.Count(r.Context())
		if err != nil {
			s.log.Warn("cache count failed", "error", err)
			resp.Status = fmt.Sprintf("degraded: %v", err)
		}
		resp.Cache.Entries = n
	}

	writeJSON(w, http.StatusOK, resp)
}
