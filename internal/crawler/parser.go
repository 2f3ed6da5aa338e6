package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// contentRootID is the element MediaWiki renders article prose into.
const contentRootID = "mw-content-text"

// skippedClasses are boxes whose links are navigation or metadata rather
// than article prose. Anchors nested anywhere inside them are ignored.
var skippedClasses = map[string]bool{
	"navbox":           true,
	"vertical-navbox":  true,
	"infobox":          true,
	"thumb":            true,
	"thumbinner":       true,
	"thumbcaption":     true,
	"metadata":         true,
	"mbox-small":       true,
	"hatnote":          true,
	"shortdescription": true,
	"reflist":          true,
	"noprint":          true,
	"sidebar-content":  true,
	"toc":              true,
	"wikitable":        true,
}

// Parser extracts outgoing article links from rendered wiki pages.
//
// Design decision: We walk the DOM with golang.org/x/net/html rather than
// scanning for href patterns because the class of the enclosing boxes
// decides whether a link is prose or navigation.
type Parser struct {
	// baseURL is the wiki the pages come from. Absolute links to any other
	// host are external.
	baseURL *url.URL
}

// ParseResult contains what was extracted from one page.
type ParseResult struct {
	// Title is the rendered page heading, for diagnostics.
	Title string

	// Links are the distinct outgoing article links in first-seen order.
	Links []model.PageID
}

// NewParser creates a parser for pages of the wiki at baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse extracts the links of a page. self is the canonical ID of the page
// and is never returned as one of its own links.
//
// Parse is a pure function of its input and never fails: content it cannot
// make sense of yields no links.
func (p *Parser) Parse(content []byte, self model.PageID) *ParseResult {
	result := &ParseResult{Links: make([]model.PageID, 0)}

	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return result
	}

	result.Title = pageTitle(doc)

	root := findByID(doc, contentRootID)
	if root == nil {
		root = doc
	}

	seen := map[model.PageID]bool{self: true}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isSkipped(n) {
				return
			}
			if n.Data == "a" && !hasClass(n, "new") {
				if id, ok := p.linkTarget(getAttr(n, "href")); ok && !seen[id] {
					seen[id] = true
					result.Links = append(result.Links, id)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return result
}

// ExtractLinks is a shorthand for Parse(content, self).Links.
func (p *Parser) ExtractLinks(content []byte, self model.PageID) []model.PageID {
	return p.Parse(content, self).Links
}

// linkTarget turns an href into the article it points to.
// Accepted forms are "/wiki/Title", "./Title" and absolute URLs on the same
// host. Red links, edit links and index.php queries are rejected.
func (p *Parser) linkTarget(href string) (model.PageID, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return model.PageID{}, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return model.PageID{}, false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return model.PageID{}, false
	}
	if u.Host != "" && !strings.EqualFold(u.Hostname(), p.baseURL.Hostname()) {
		return model.PageID{}, false
	}

	query := u.Query()
	if query.Get("redlink") != "" || query.Get("action") != "" {
		return model.PageID{}, false
	}

	path := u.EscapedPath()
	switch {
	case strings.HasPrefix(path, "/wiki/"):
	case u.Host == "" && strings.HasPrefix(path, "./"):
		path = strings.TrimPrefix(path, "./")
	default:
		return model.PageID{}, false
	}

	id, err := model.ParsePageID(path)
	if err != nil {
		return model.PageID{}, false
	}
	return id, true
}

// pageTitle returns the text of h1#firstHeading, falling back to <title>
// without the site suffix.
func pageTitle(doc *html.Node) string {
	if h1 := findByID(doc, "firstHeading"); h1 != nil {
		return strings.TrimSpace(textContent(h1))
	}

	var title string
	var find func(*html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = textContent(n)
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(doc)

	if i := strings.LastIndex(title, " - "); i > 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// findByID returns the first element with the given id attribute.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && getAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// textContent concatenates all text below n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// isSkipped reports whether the element is a non-prose box.
func isSkipped(n *html.Node) bool {
	for _, class := range strings.Fields(getAttr(n, "class")) {
		if skippedClasses[class] {
			return true
		}
	}
	return false
}

// hasClass reports whether the element's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, class := range strings.Fields(getAttr(n, "class")) {
		if class == name {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
