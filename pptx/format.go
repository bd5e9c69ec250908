// CLAUDE:SUMMARY Human-readable slide rendering and whitespace normalization.
package pptx

import (
	"fmt"
	"regexp"
	"strings"
)

// FormatSlide renders a SlideContent as a readable block with fixed section
// order: header, "# title", body, [Tableau], [Notes], then the recognized
// image texts. includeMetadata controls the "--- Slide N ---" header.
func FormatSlide(content SlideContent, includeMetadata bool) string {
	var parts []string

	if includeMetadata {
		parts = append(parts, fmt.Sprintf("--- Slide %d ---", content.SlideNumber))
	}
	if content.Title != "" {
		parts = append(parts, "# "+content.Title)
	}
	if content.BodyText != "" {
		parts = append(parts, content.BodyText)
	}
	if content.TableText != "" {
		parts = append(parts, "\n[Tableau]", content.TableText)
	}
	if content.Notes != "" {
		parts = append(parts, "\n[Notes]", content.Notes)
	}
	if len(content.ImageTexts) > 0 {
		parts = append(parts, "\n[Texte extrait des images]")
		for i, imgText := range content.ImageTexts {
			parts = append(parts, fmt.Sprintf("Image %d: %s", i+1, imgText))
		}
	}

	return strings.Join(parts, "\n")
}

var horizontalWS = regexp.MustCompile(`[ \t]+`)

// NormalizeWhitespace collapses runs of spaces and tabs within each line and
// trims the lines, preserving line breaks.
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(horizontalWS.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
