// CLAUDE:SUMMARY Shape and table text extraction — paragraphs newline-joined, cells " | "-joined, bounded group recursion.
package pptx

import (
	"log/slog"
	"strings"
)

// maxGroupDepth bounds recursion into nested groups. The source format does
// not guarantee a nesting bound, so traversal stops here instead of trusting
// the document.
const maxGroupDepth = 8

// ShapeText returns the textual content of a shape as a single string:
// trimmed non-empty paragraph texts newline-joined, table content via
// TableText, and group children recursed one level at a time up to
// maxGroupDepth. A shape that carries no text yields "".
func ShapeText(s *Shape, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	return shapeText(s, 0, logger)
}

func shapeText(s *Shape, depth int, logger *slog.Logger) string {
	if depth > maxGroupDepth {
		logger.Debug("group nesting exceeds depth limit, stopping", "depth", depth)
		return ""
	}

	var texts []string

	if s.HasTextFrame {
		for _, p := range s.Paragraphs {
			if t := strings.TrimSpace(p.Text()); t != "" {
				texts = append(texts, t)
			}
		}
	}

	if s.Table != nil {
		if tt := TableText(s.Table); tt != "" {
			texts = append(texts, tt)
		}
	}

	if s.Kind == KindGroup {
		for _, child := range s.Children {
			if ct := shapeText(child, depth+1, logger); ct != "" {
				texts = append(texts, ct)
			}
		}
	}

	return strings.Join(texts, "\n")
}

// TableText renders a table as one line per row, cell texts trimmed and
// joined with " | ". The join is positional — a row ["a",""] renders as
// "a | " — but rows where every cell is empty are dropped entirely.
func TableText(t *Table) string {
	var rows []string
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row))
		nonEmpty := false
		for _, cell := range row {
			var b strings.Builder
			for _, p := range cell.Paragraphs {
				b.WriteString(p.Text())
			}
			text := strings.TrimSpace(b.String())
			if text != "" {
				nonEmpty = true
			}
			cells = append(cells, text)
		}
		if nonEmpty {
			rows = append(rows, strings.Join(cells, " | "))
		}
	}
	return strings.Join(rows, "\n")
}
