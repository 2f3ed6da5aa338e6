package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// DefaultMaxBodySize is the largest article body read from a wiki.
// The longest English Wikipedia articles render to a little over 2MB.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Document is one raw response from a Source: either the content of an
// article or a single redirect hop.
type Document struct {
	// ID is the title that was requested.
	ID model.PageID

	// Body is the raw HTML. Empty for redirects.
	Body []byte

	// RedirectTo is the title ID redirects to. Zero for content.
	RedirectTo model.PageID
}

// IsRedirect reports whether the document is a redirect hop.
func (d *Document) IsRedirect() bool {
	return !d.RedirectTo.IsZero()
}

// Source retrieves single documents without retrying or following
// redirects. Failures are reported with ErrPageNotFound for missing titles
// and ErrTransient for anything worth retrying.
type Source interface {
	Fetch(ctx context.Context, id model.PageID) (*Document, error)
}

// RandomSource is a Source that can also pick a random article.
// HTTPSource implements it, MirrorSource does not.
type RandomSource interface {
	Source
	RandomTitle(ctx context.Context) (model.PageID, error)
}

// HTTPSource fetches articles from a live MediaWiki site.
type HTTPSource struct {
	httpClient  *http.Client
	baseURL     string
	host        string
	maxBodySize int64
}

// HTTPSourceOption configures an HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithMaxBodySize caps how many bytes of an article are read.
// Longer bodies are truncated, which only loses links near the end.
func WithMaxBodySize(n int64) HTTPSourceOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// NewHTTPSource creates a source for the wiki at baseURL
// (e.g. "https://en.wikipedia.org").
func NewHTTPSource(client *http.Client, baseURL string, opts ...HTTPSourceOption) (*HTTPSource, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	s := &HTTPSource{
		httpClient:  client,
		baseURL:     u.Scheme + "://" + u.Host,
		host:        u.Host,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BaseURL returns the normalised "scheme://host" of the wiki.
func (s *HTTPSource) BaseURL() string {
	return s.baseURL
}

// Fetch retrieves one article without following redirects.
func (s *HTTPSource) Fetch(ctx context.Context, id model.PageID) (*Document, error) {
	resp, err := s.get(ctx, id.URL(s.baseURL)+"?redirect=no")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	status := ClassifyStatusCode(resp.StatusCode)
	switch status {
	case StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrTransient, id, err)
		}
		if target, ok := FindRedirectTarget(body); ok {
			return &Document{ID: id, RedirectTo: target}, nil
		}
		return &Document{ID: id, Body: body}, nil

	case StatusRedirect:
		target, err := s.locationTitle(resp)
		if err != nil {
			// A redirect out of the article namespace leads nowhere useful.
			return nil, fmt.Errorf("%w: %s redirects outside the wiki: %w", ErrPageNotFound, id, err)
		}
		return &Document{ID: id, RedirectTo: target}, nil

	default:
		return nil, fmt.Errorf("%w: %s: HTTP %d", status.Error(), id, resp.StatusCode)
	}
}

// RandomTitle asks the wiki for a random article via Special:Random.
// It sends a single request; Fetcher.RandomTitle adds rate limiting and
// retries.
func (s *HTTPSource) RandomTitle(ctx context.Context) (model.PageID, error) {
	resp, err := s.get(ctx, s.baseURL+"/wiki/Special:Random")
	if err != nil {
		return model.PageID{}, err
	}
	defer resp.Body.Close()

	switch ClassifyStatusCode(resp.StatusCode) {
	case StatusRedirect:
		return s.locationTitle(resp)
	case StatusTransient:
		return model.PageID{}, fmt.Errorf("%w: Special:Random: HTTP %d", ErrTransient, resp.StatusCode)
	default:
		return model.PageID{}, fmt.Errorf("%w: Special:Random returned HTTP %d", ErrNotRedirect, resp.StatusCode)
	}
}

func (s *HTTPSource) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return resp, nil
}

// locationTitle parses the Location header of a redirect response as an
// article on this wiki.
func (s *HTTPSource) locationTitle(resp *http.Response) (model.PageID, error) {
	loc, err := resp.Location()
	if err != nil {
		return model.PageID{}, err
	}
	if loc.Host != "" && !strings.EqualFold(loc.Host, s.host) {
		return model.PageID{}, errors.New("redirect to another host " + loc.Host)
	}
	return model.ParsePageID(loc.EscapedPath())
}
