package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

// legacyURLFields are form field names older pages post the URL under.
var legacyURLFields = []string{"youTubeLink", "facebookLink", "instagramLink", "twitterLink"}

var errEmptyBody = errors.New("empty request body")

// decodeRequest reads a mediaRequest from a JSON body or an HTML form.
func decodeRequest(w http.ResponseWriter, r *http.Request) (mediaRequest, error) {
	var req mediaRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return decodeForm(r)
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errEmptyBody
		}
		return req, fmt.Errorf("invalid JSON: %w", err)
	}
	return req, nil
}

func decodeForm(r *http.Request) (mediaRequest, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return mediaRequest{}, fmt.Errorf("invalid form: %w", err)
	}

	req := mediaRequest{
		URL:      r.PostFormValue("url"),
		FormatID: r.PostFormValue("format_id"),
		Quality:  r.PostFormValue("quality"),
		Kind:     r.PostFormValue("kind"),
	}
	for _, field := range legacyURLFields {
		if strings.TrimSpace(req.URL) != "" {
			break
		}
		req.URL = r.PostFormValue(field)
	}
	if v := r.PostFormValue("combined"); v != "" {
		combined, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("invalid combined value %q", v)
		}
		req.Combined = combined
	}
	return req, nil
}
