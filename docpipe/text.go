// CLAUDE:SUMMARY Plain-text and Markdown extractors with ATX heading detection.
package docpipe

import (
	"os"
	"strings"
	"unicode"
)

// extractText extracts content from a plain text file.
func extractText(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	text := normalizeWhitespace(string(data))
	if text == "" {
		return "", nil, nil
	}

	return firstLine(text), []Section{{
		Text: text,
		Type: "paragraph",
	}}, nil
}

// extractMarkdown splits a Markdown file into heading and paragraph sections.
func extractMarkdown(path string) (string, []Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	title, sections := markdownSections(string(data))
	return title, sections, nil
}

// markdownSections parses Markdown content: ATX headings (#, ## …) open
// heading sections, blank lines split paragraphs, other lines accumulate
// into the current paragraph. The first heading becomes the title; without
// headings the first paragraph line does.
func markdownSections(content string) (string, []Section) {
	var sections []Section
	var title string
	var para strings.Builder

	flush := func() {
		if text := strings.TrimSpace(para.String()); text != "" {
			sections = append(sections, Section{Text: text, Type: "paragraph"})
		}
		para.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			flush()
			level, text := parseATXHeading(trimmed)
			if text != "" {
				if title == "" {
					title = text
				}
				sections = append(sections, Section{
					Title: text,
					Level: level,
					Text:  text,
					Type:  "heading",
				})
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if para.Len() > 0 {
			para.WriteByte(' ')
		}
		para.WriteString(trimmed)
	}
	flush()

	if title == "" && len(sections) > 0 {
		title = firstLine(sections[0].Text)
	}
	return title, sections
}

// parseATXHeading returns the heading level (capped at 6) and the heading
// text with marker hashes stripped on both sides.
func parseATXHeading(line string) (int, string) {
	level := 0
	for _, ch := range line {
		if ch != '#' {
			break
		}
		level++
	}
	if level > 6 {
		level = 6
	}
	text := strings.TrimSpace(strings.TrimLeft(line, "#"))
	text = strings.TrimSpace(strings.TrimRight(text, "#"))
	return level, text
}

func normalizeWhitespace(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		} else {
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
