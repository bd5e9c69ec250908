// CLAUDE:SUMMARY HTML extractor — isolate main content, sanitize, convert to Markdown, then reuse the Markdown sectioner.
package docpipe

import (
	"bytes"
	"os"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	htmlPolicy  = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
)

// extractHTMLFile extracts structured content from an HTML file: the main
// content subtree is isolated, the markup sanitized, converted to Markdown,
// and sectioned by the Markdown parser. The document <title> is read from
// the parsed tree, since sanitization drops the head.
func extractHTMLFile(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	raw := string(data)
	var title string
	if doc, err := html.Parse(bytes.NewReader(data)); err == nil {
		title = htmlTitle(doc)
		// Pages with identifiable main content convert without chrome;
		// small or structureless pages convert whole.
		if node := mainContent(doc); node != nil {
			if rendered := renderNode(node); rendered != "" {
				raw = rendered
			}
		}
	}

	sanitized := htmlPolicy.Sanitize(raw)
	markdown, err := mdConverter.ConvertString(sanitized)
	if err != nil {
		return "", nil, err
	}

	mdTitle, sections := markdownSections(markdown)
	if title == "" {
		title = mdTitle
	}

	if len(sections) == 0 {
		// Markup without block structure: fall back to flattened text.
		if text := normalizeWhitespace(markdown); text != "" {
			sections = append(sections, Section{Text: text, Type: "paragraph"})
		}
	}

	return title, sections, nil
}

// htmlTitle returns the trimmed <title> text, or "".
func htmlTitle(doc *html.Node) string {
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				return strings.TrimSpace(n.FirstChild.Data)
			}
			return ""
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}
