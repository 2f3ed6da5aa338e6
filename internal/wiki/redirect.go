package wiki

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/Baykugan/Wiki-Crawler/internal/model"
)

// FindRedirectTarget reports the target of a MediaWiki redirect stub.
//
// Requesting a redirect with "?redirect=no" returns a small page whose body
// holds
//
//	<div class="redirectMsg"><ul class="redirectText"><li><a href="/wiki/Target">
//
// Any other page yields false.
func FindRedirectTarget(body []byte) (model.PageID, bool) {
	if !bytes.Contains(body, []byte("redirect")) {
		return model.PageID{}, false
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return model.PageID{}, false
	}

	var find func(n *html.Node, inStub bool) (model.PageID, bool)
	find = func(n *html.Node, inStub bool) (model.PageID, bool) {
		if n.Type == html.ElementNode {
			if hasClass(n, "redirectMsg") || hasClass(n, "redirectText") {
				inStub = true
			}
			if inStub && n.Data == "a" {
				if id, err := model.ParsePageID(attr(n, "href")); err == nil {
					return id, true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if id, ok := find(c, inStub); ok {
				return id, true
			}
		}
		return model.PageID{}, false
	}

	return find(doc, false)
}

// hasClass reports whether the element's class attribute contains name.
func hasClass(n *html.Node, name string) bool {
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == name {
			return true
		}
	}
	return false
}

// attr retrieves an attribute value from an HTML node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
