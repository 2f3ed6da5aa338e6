package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPageID is returned when a title cannot name an article in the
// main namespace.
var ErrInvalidPageID = errors.New("invalid page identifier")

const (
	// wikiPathPrefix is the path prefix of article URLs.
	wikiPathPrefix = "/wiki/"

	// illegalTitleChars are characters MediaWiki never allows in a title.
	illegalTitleChars = "#<>[]|{}"
)

// excludedNamespaces lists namespace and interwiki prefixes, case folded.
// A title whose text before the first colon matches one of these is not an
// article.
var excludedNamespaces = map[string]bool{
	"media":          true,
	"special":        true,
	"talk":           true,
	"user":           true,
	"user talk":      true,
	"wikipedia":      true,
	"wikipedia talk": true,
	"project":        true,
	"project talk":   true,
	"wp":             true,
	"wt":             true,
	"file":           true,
	"file talk":      true,
	"image":          true,
	"image talk":     true,
	"mediawiki":      true,
	"mediawiki talk": true,
	"template":       true,
	"template talk":  true,
	"help":           true,
	"help talk":      true,
	"category":       true,
	"category talk":  true,
	"portal":         true,
	"portal talk":    true,
	"draft":          true,
	"draft talk":     true,
	"timedtext":      true,
	"timedtext talk": true,
	"module":         true,
	"module talk":    true,
	"book":           true,
	"book talk":      true,
	"gadget":         true,
	"gadget talk":    true,

	// Interwiki prefixes that show up inside article bodies. The one-letter
	// shortcuts (d:, q:, s:) are left out: rendered pages link them as
	// external URLs, and titles such as "Q: Are We Not Men?" are articles.
	"wikt":       true,
	"wiktionary": true,
	"commons":    true,
	"meta":       true,
	"wikisource": true,
	"wikiquote":  true,
	"wikidata":   true,
	"voy":        true,
}

var (
	namespaceFolder = cases.Fold()
	firstRuneUpper  = cases.Upper(language.Und)
)

// PageID is an immutable value object naming one article in the main
// namespace. Two PageIDs are equal when their canonical titles are equal, so
// PageID can be used directly as a map key.
type PageID struct {
	title string // canonical title with spaces, first rune upper case
}

// ParsePageID canonicalises a title, a "/wiki/Title" path or a full article
// URL. Percent-encoding, underscores, repeated whitespace, a fragment suffix
// and the case of the first letter are all normalised away.
func ParsePageID(raw string) (PageID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return PageID{}, fmt.Errorf("%w: empty title", ErrInvalidPageID)
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return PageID{}, fmt.Errorf("%w: %q: %w", ErrInvalidPageID, raw, err)
		}
		if !strings.HasPrefix(u.EscapedPath(), wikiPathPrefix) {
			return PageID{}, fmt.Errorf("%w: %q is not an article URL", ErrInvalidPageID, raw)
		}
		s = strings.TrimPrefix(u.EscapedPath(), wikiPathPrefix)
		if u.Fragment != "" {
			s += "#" + u.Fragment
		}
	} else if strings.HasPrefix(s, wikiPathPrefix) {
		s = strings.TrimPrefix(s, wikiPathPrefix)
		if i := strings.IndexByte(s, '?'); i >= 0 {
			s = s[:i]
		}
	}

	// A stray '%' that is not an escape sequence is a legal title character.
	decoded, err := url.PathUnescape(s)
	if err != nil {
		decoded = s
	}

	if i := strings.IndexByte(decoded, '#'); i >= 0 {
		decoded = decoded[:i]
	}

	title := strings.Join(strings.Fields(strings.ReplaceAll(decoded, "_", " ")), " ")
	title = norm.NFC.String(title)
	if title == "" {
		return PageID{}, fmt.Errorf("%w: %q has no title", ErrInvalidPageID, raw)
	}
	if !utf8.ValidString(title) {
		return PageID{}, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidPageID, raw)
	}
	if strings.ContainsAny(title, illegalTitleChars) {
		return PageID{}, fmt.Errorf("%w: %q contains an illegal character", ErrInvalidPageID, raw)
	}

	if i := strings.IndexByte(title, ':'); i > 0 {
		ns := strings.TrimSpace(title[:i])
		if excludedNamespaces[namespaceFolder.String(ns)] {
			return PageID{}, fmt.Errorf("%w: %q is outside the article namespace", ErrInvalidPageID, raw)
		}
	}

	return PageID{title: upperFirst(title)}, nil
}

// MustParsePageID parses a title or panics.
// Use only for known-valid titles in tests or initialization.
func MustParsePageID(raw string) PageID {
	id, err := ParsePageID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// upperFirst upper-cases the first rune, as MediaWiki does for titles.
func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return firstRuneUpper.String(string(r)) + s[size:]
}

// String returns the canonical title with spaces.
func (p PageID) String() string {
	return p.title
}

// IsZero returns true if this is the zero value PageID.
func (p PageID) IsZero() bool {
	return p.title == ""
}

// Equals returns true if two PageIDs name the same article.
func (p PageID) Equals(other PageID) bool {
	return p.title == other.title
}

// PathSegment returns the title as it appears after "/wiki/" in a URL.
// Slashes inside the title are kept as path separators.
func (p PageID) PathSegment() string {
	parts := strings.Split(strings.ReplaceAll(p.title, " ", "_"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

// FileName returns a name usable as a single file in a mirror directory.
func (p PageID) FileName() string {
	return url.PathEscape(strings.ReplaceAll(p.title, " ", "_")) + ".html"
}

// URL returns the article URL under the given site base
// (e.g. "https://en.wikipedia.org").
func (p PageID) URL(base string) string {
	return strings.TrimRight(base, "/") + wikiPathPrefix + p.PathSegment()
}

// MarshalText implements encoding.TextMarshaler.
func (p PageID) MarshalText() ([]byte, error) {
	return []byte(p.title), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PageID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = PageID{}
		return nil
	}
	id, err := ParsePageID(string(text))
	if err != nil {
		return err
	}
	*p = id
	return nil
}

// TitlesOf converts a slice of PageIDs to their titles.
func TitlesOf(ids []PageID) []string {
	titles := make([]string, len(ids))
	for i, id := range ids {
		titles[i] = id.String()
	}
	return titles
}
