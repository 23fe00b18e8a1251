// Package urlcheck decides whether a user-supplied URL points at a supported
// media platform. It never touches the network.
package urlcheck

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hbollon/go-edlib"
)

// MsgEmpty is returned for empty or whitespace-only input.
const MsgEmpty = "Please enter a URL."

// suggestThreshold is the minimum Jaro-Winkler similarity for a
// "did you mean" hint on rejected hosts.
const suggestThreshold = 0.9

// platforms maps every built-in domain to its display name.
var platforms = map[string]string{
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"facebook.com":    "Facebook",
	"fb.watch":        "Facebook",
	"instagram.com":   "Instagram",
	"twitter.com":     "Twitter",
	"x.com":           "Twitter",
	"tiktok.com":      "TikTok",
	"vimeo.com":       "Vimeo",
	"dailymotion.com": "Dailymotion",
}

// DefaultDomains is the built-in allow-list, in display order.
var DefaultDomains = []string{
	"youtube.com",
	"youtu.be",
	"facebook.com",
	"fb.watch",
	"instagram.com",
	"twitter.com",
	"x.com",
	"tiktok.com",
	"vimeo.com",
	"dailymotion.com",
}

// Result is the outcome of checking one URL.
type Result struct {
	OK       bool
	Message  string
	URL      string // trimmed input with a scheme; what callers should fetch
	Host     string // normalized host, without "www."
	Domain   string // allow-list entry that matched
	Platform string // display name, e.g. "YouTube"
}

// Validator checks URLs against an allow-list of platform domains.
type Validator struct {
	domains []string
}

// New creates a validator for the built-in domains plus any extra ones.
func New(extra ...string) *Validator {
	domains := make([]string, 0, len(DefaultDomains)+len(extra))
	domains = append(domains, DefaultDomains...)
	for _, d := range extra {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www.")
		if d != "" && !contains(domains, d) {
			domains = append(domains, d)
		}
	}
	return &Validator{domains: domains}
}

var defaultValidator = New()

// Validate checks raw against the built-in allow-list.
func Validate(raw string) (bool, string) {
	return defaultValidator.Validate(raw)
}

// Domains returns the allow-list.
func (v *Validator) Domains() []string {
	out := make([]string, len(v.domains))
	copy(out, v.domains)
	return out
}

// Validate reports whether raw is acceptable, with a user-facing message.
func (v *Validator) Validate(raw string) (bool, string) {
	r := v.Check(raw)
	return r.OK, r.Message
}

// Check validates raw and describes the matched platform.
func (v *Validator) Check(raw string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Result{Message: MsgEmpty}
	}

	// Users often paste "youtu.be/abc" without a scheme.
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Result{Message: fmt.Sprintf("Invalid URL: %v", err)}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return Result{Message: "Invalid URL: missing host"}
	}

	for _, d := range v.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			platform := PlatformName(d)
			return Result{
				OK:       true,
				Message:  fmt.Sprintf("Valid %s URL", platform),
				URL:      raw,
				Host:     host,
				Domain:   d,
				Platform: platform,
			}
		}
	}

	msg := fmt.Sprintf("Unsupported platform: %s", host)
	if s := v.suggest(host); s != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", s)
	}
	return Result{Message: msg, Host: host}
}

// suggest returns the allowed domain closest to host, if it is close enough.
func (v *Validator) suggest(host string) string {
	best := ""
	var bestScore float32
	for _, d := range v.domains {
		score := edlib.JaroWinklerSimilarity(host, d)
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

// PlatformName returns the display name for an allow-listed domain.
// Domains without a known platform are their own name.
func PlatformName(domain string) string {
	if name, ok := platforms[domain]; ok {
		return name
	}
	return domain
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
