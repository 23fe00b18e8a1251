package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// Client wraps HTTP calls to the mediagrab server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// Downloads stream for as long as the extractor needs.
	downloadClient *http.Client
}

// NewClient creates a new mediagrab API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		downloadClient: &http.Client{},
	}
}

// APIError is an error response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var e struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return &APIError{Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	}
	return &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Error}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) postRaw(hc *http.Client, path string, body any) (*http.Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal error: %w", err)
	}

	resp, err := hc.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		return nil, readError(resp)
	}
	return resp, nil
}

func (c *Client) post(path string, body any, result any) error {
	resp, err := c.postRaw(c.httpClient, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Validate asks the server whether url is supported.
func (c *Client) Validate(url string) (*ValidateResponse, error) {
	var resp ValidateResponse
	if err := c.post("/api/v1/validate", MediaRequest{URL: url}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Info returns the title and offers for url.
func (c *Client) Info(url string) (*InfoResponse, error) {
	var resp InfoResponse
	if err := c.post("/api/v1/info", MediaRequest{URL: url}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Download streams the requested media into w and returns the file name
// suggested by the server and the number of bytes written.
func (c *Client) Download(req MediaRequest, w io.Writer) (string, int64, error) {
	resp, err := c.postRaw(c.downloadClient, "/api/v1/download", req)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("download interrupted after %d bytes: %w", n, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return "", n, errors.New("download truncated")
	}
	return attachmentName(resp.Header.Get("Content-Disposition")), n, nil
}

// Platforms lists the supported domains.
func (c *Client) Platforms() (*PlatformsResponse, error) {
	var resp PlatformsResponse
	if err := c.get("/api/v1/platforms", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status returns server status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// API request/response types (mirror server types)

type MediaRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
	Quality  string `json:"quality,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Combined bool   `json:"combined,omitempty"`
}

type ValidateResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	URL      string `json:"url,omitempty"`
	Platform string `json:"platform,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Host     string `json:"host,omitempty"`
}

type OfferResponse struct {
	FormatID      string `json:"format_id"`
	Quality       string `json:"quality"`
	Label         string `json:"label"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	FPS           int    `json:"fps"`
	NeedsMerge    bool   `json:"needs_merge"`
	Size          *int64 `json:"size,omitempty"`
	SizeEstimated bool   `json:"size_estimated"`
	SizeLabel     string `json:"size_label"`
	Category      string `json:"category"`
	Ext           string `json:"ext,omitempty"`
}

type InfoResponse struct {
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	Uploader  string          `json:"uploader,omitempty"`
	Duration  float64         `json:"duration,omitempty"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Platform  string          `json:"platform"`
	Offers    []OfferResponse `json:"offers"`
}

type PlatformsResponse struct {
	Platforms []struct {
		Domain string `json:"domain"`
		Name   string `json:"name"`
	} `json:"platforms"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Extractor string `json:"extractor"`
	Platforms int    `json:"platforms"`
	Cache     struct {
		Enabled bool `json:"enabled"`
		Entries int  `json:"entries"`
	} `json:"cache"`
}
