package wiki

import (
	"errors"
	"net/http"
)

// Fetch errors.
// The searcher treats all of them as "this page has no outgoing links" and
// keeps going; only ErrInvalidBaseURL and ErrInvalidProxyAddress are
// configuration errors.
var (
	// ErrPageNotFound is returned when the title does not exist.
	// It is a dead end, never retried.
	ErrPageNotFound = errors.New("page not found")

	// ErrTransient is returned by a Source for failures worth retrying:
	// network errors, timeouts, rate limiting and server errors.
	ErrTransient = errors.New("transient fetch failure")

	// ErrFetchFailed is returned by the Fetcher when a page could not be
	// retrieved after all retries, or when its redirect chain is unusable.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrRedirectCycle is returned together with ErrFetchFailed when a
	// redirect chain loops or is longer than the hop limit.
	ErrRedirectCycle = errors.New("redirect cycle")

	// ErrInvalidBaseURL is returned when a wiki base URL is not an absolute
	// http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid wiki base URL: expected http(s)://host")

	// ErrInvalidProxyAddress is returned when the proxy address format is
	// invalid. Expected format is "[socks5://][user:pass@]host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrNotRedirect is returned by RandomTitle when the wiki did not answer
	// Special:Random with a redirect.
	ErrNotRedirect = errors.New("expected a redirect response")

	// ErrRandomUnsupported is returned by Fetcher.RandomTitle when its
	// source cannot pick random articles, such as a local mirror.
	ErrRandomUnsupported = errors.New("source cannot pick random articles")
)

// SourceStatus classifies a response from a wiki.
type SourceStatus int

const (
	// StatusOK means the content was returned.
	StatusOK SourceStatus = iota

	// StatusRedirect means the title redirects to another title.
	StatusRedirect

	// StatusNotFound means the title does not exist.
	StatusNotFound

	// StatusTransient means the request may succeed if retried.
	StatusTransient

	// StatusUnexpected means a response the crawler does not understand.
	StatusUnexpected
)

// String returns a human-readable description of the status.
func (s SourceStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRedirect:
		return "redirect"
	case StatusNotFound:
		return "not found"
	case StatusTransient:
		return "transient"
	case StatusUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Error returns the sentinel error for this status, or nil when the status
// carries content or a redirect.
func (s SourceStatus) Error() error {
	switch s {
	case StatusOK, StatusRedirect:
		return nil
	case StatusNotFound:
		return ErrPageNotFound
	case StatusTransient:
		return ErrTransient
	default:
		return errors.New("unexpected response status")
	}
}

// ClassifyStatusCode maps an HTTP status code to a SourceStatus.
func ClassifyStatusCode(code int) SourceStatus {
	switch {
	case code == http.StatusOK:
		return StatusOK
	case code == http.StatusMovedPermanently,
		code == http.StatusFound,
		code == http.StatusSeeOther,
		code == http.StatusTemporaryRedirect,
		code == http.StatusPermanentRedirect:
		return StatusRedirect
	case code == http.StatusNotFound, code == http.StatusGone:
		return StatusNotFound
	case code == http.StatusTooManyRequests,
		code == http.StatusRequestTimeout,
		code >= http.StatusInternalServerError:
		return StatusTransient
	default:
		return StatusUnexpected
	}
}
