package directory

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// memberPathPrefix is the path prefix of member detail pages. The site
// serves every member's detail page under /members/<slug> regardless of
// which listing root the member appears on.
const memberPathPrefix = "/members/"

// extractMemberLinks parses one listing page and returns the absolute URLs
// of the member detail pages it links to, in document order.
func extractMemberLinks(body []byte, base *url.URL) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if resolved := resolveMemberLink(href, base); resolved != "" && !seen[resolved] {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// resolveMemberLink resolves href against the base URL and returns the
// absolute URL if it points at a member detail page, or "" otherwise.
// Links to the listing root itself (/members or /members/) are not detail
// pages and are dropped.
func resolveMemberLink(href string, base *url.URL) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)

	// Detail links stay on the directory host.
	if !strings.EqualFold(resolved.Host, base.Host) {
		return ""
	}

	slug := strings.TrimPrefix(resolved.Path, memberPathPrefix)
	if slug == resolved.Path || slug == "" {
		return ""
	}

	// Fragments never change the page; strip them so dedup works.
	resolved.Fragment = ""
	return resolved.String()
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
