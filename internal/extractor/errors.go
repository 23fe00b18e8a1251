package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOutput is returned when the extractor's JSON cannot be decoded.
var ErrInvalidOutput = errors.New("invalid extractor output")

// Kind classifies an extractor failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnavailable
	KindRightsRestricted
	KindTimeout
	KindMergeFailed
	KindEmptyOutput
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindUnavailable:      "unavailable",
	KindRightsRestricted: "rights-restricted",
	KindTimeout:          "timeout",
	KindMergeFailed:      "merge-failed",
	KindEmptyOutput:      "empty-output",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Retryable reports whether another format choice may succeed where this
// one failed. Timeouts, merge failures and unknown errors are final.
func (k Kind) Retryable() bool {
	switch k {
	case KindUnavailable, KindRightsRestricted, KindEmptyOutput:
		return true
	default:
		return false
	}
}

// Error is a classified extractor failure.
type Error struct {
	Kind Kind
	Op   string // "probe" or "fetch"
	Msg  string // human-readable reason
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// kindPatterns are matched, in order, against the lower-cased error text.
var kindPatterns = []struct {
	kind     Kind
	patterns []string
}{
	{KindRightsRestricted, []string{"http error 403", "403: forbidden", "403 forbidden"}},
	{KindUnavailable, []string{"requested format is not available", "requested format not available", "format not available", "no video formats found"}},
	{KindTimeout, []string{"timed out", "timeout"}},
	{KindMergeFailed, []string{"merging of", "postprocessing", "conversion failed", "ffmpeg"}},
}

// classify turns a failed run into an *Error. stderr may be empty.
func classify(ctx context.Context, op string, err error, stderr string) *Error {
	msg := errorLines(stderr)
	if msg == "" {
		msg = err.Error()
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Msg: msg, Err: err}
	}

	lower := strings.ToLower(msg)
	for _, kp := range kindPatterns {
		for _, p := range kp.patterns {
			if strings.Contains(lower, p) {
				return &Error{Kind: kp.kind, Op: op, Msg: msg, Err: err}
			}
		}
	}
	return &Error{Kind: KindUnknown, Op: op, Msg: msg, Err: err}
}

// errorLines returns the "ERROR:" lines of stderr without the prefix.
func errorLines(stderr string) string {
	var lines []string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "ERROR:"); ok {
			lines = append(lines, strings.TrimSpace(rest))
		}
	}
	return strings.Join(lines, "; ")
}
