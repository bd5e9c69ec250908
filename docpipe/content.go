// CLAUDE:SUMMARY Main-content isolation for HTML pages — semantic landmarks first, then text-density scoring.
package docpipe

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentMinLen is the minimum text length for a subtree to count as content.
const contentMinLen = 100

// mainContent returns the DOM subtree carrying the page's main content, or
// nil when nothing stands out (small pages convert better whole). Semantic
// landmarks (<article>, <main>, role="main") win when present; otherwise the
// subtree with the highest text-to-markup ratio is picked, skipping
// navigation, footers, and other boilerplate.
func mainContent(doc *html.Node) *html.Node {
	for _, n := range findLandmarks(doc) {
		if !isBoilerplate(n) && len(collectNodeText(n)) >= contentMinLen {
			return n
		}
	}

	body := findBody(doc)
	if body == nil {
		return nil
	}
	return findDensestNode(body, contentMinLen)
}

// findLandmarks returns <article>, <main> and role="main" elements in
// document order.
func findLandmarks(doc *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.DataAtom == atom.Article || n.DataAtom == atom.Main:
				out = append(out, n)
				return
			case nodeAttr(n, "role") == "main":
				out = append(out, n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

var boilerplateHints = []string{"sidebar", "comment", "footer", "menu", "nav", "banner", "cookie", "advert"}

// isBoilerplate reports whether a subtree is navigation or page chrome.
func isBoilerplate(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Nav, atom.Footer, atom.Aside, atom.Header, atom.Form:
		return true
	}
	marker := strings.ToLower(nodeAttr(n, "class") + " " + nodeAttr(n, "id") + " " + nodeAttr(n, "role"))
	for _, hint := range boilerplateHints {
		if strings.Contains(marker, hint) {
			return true
		}
	}
	return false
}

// isContentTag reports whether a tag can anchor a content subtree.
func isContentTag(a atom.Atom) bool {
	switch a {
	case atom.Div, atom.Article, atom.Section, atom.Main, atom.Td:
		return true
	}
	return false
}

type nodeScore struct {
	node     *html.Node
	textLen  int
	density  float64
	linkDens float64
}

// findDensestNode walks the DOM and returns the content subtree with the
// best composite score, or nil when no candidate reaches minLen.
func findDensestNode(root *html.Node, minLen int) *html.Node {
	var candidates []nodeScore

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type != html.ElementNode || isBoilerplate(n) {
			return
		}
		if isContentTag(n.DataAtom) || n.DataAtom == atom.Body {
			text := collectNodeText(n)
			if len(text) >= minLen {
				markup := renderNode(n)
				markupLen := len(markup)
				if markupLen == 0 {
					markupLen = 1
				}
				linkDens := float64(len(collectLinkText(n))) / float64(len(text))
				candidates = append(candidates, nodeScore{
					node:     n,
					textLen:  len(text),
					density:  float64(len(text)) / float64(markupLen),
					linkDens: linkDens,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	var best *nodeScore
	bestScore := 0.0
	for i := range candidates {
		c := &candidates[i]
		if c.linkDens > 0.5 {
			// Mostly links: navigation in disguise.
			continue
		}
		score := c.density * logScale(c.textLen) * (1 - c.linkDens)
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return best.node
}

// logScale grows slowly with text length so that longer subtrees win ties
// without drowning out density.
func logScale(n int) float64 {
	if n <= 0 {
		return 0
	}
	scale := 1.0
	for v := n; v > 100; v /= 2 {
		scale++
	}
	return scale
}

// collectNodeText gathers trimmed text content, skipping scripts and styles.
func collectNodeText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// collectLinkText gathers text living inside <a> elements only.
func collectLinkText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node, bool)
	f = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			sb.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c, inLink)
		}
	}
	f(n, false)
	return sb.String()
}

func renderNode(n *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return ""
	}
	return sb.String()
}

func findBody(doc *html.Node) *html.Node {
	var body *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if body != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return body
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
