// CLAUDE:SUMMARY PDF extraction quality metrics — flags documents whose text layer is missing or garbled.
package docpipe

import (
	"regexp"
	"strings"
	"unicode"
)

// ExtractionQuality captures metrics about PDF text extraction quality.
type ExtractionQuality struct {
	PageCount       int     `json:"page_count"`
	CharsPerPage    float64 `json:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams"`
	VisualRefCount  int     `json:"visual_ref_count"`
}

// NeedsOCR returns true if the PDF likely needs OCR to extract text: nearly
// empty pages over image streams, or a text layer dominated by garbage runes.
func (q *ExtractionQuality) NeedsOCR() bool {
	return (q.CharsPerPage < 50 && q.HasImageStreams) || q.PrintableRatio < 0.85
}

// HasVisualGap returns true if the text references figures/tables while the
// PDF carries images the extraction cannot read.
func (q *ExtractionQuality) HasVisualGap() bool {
	return q.VisualRefCount > 0 && q.HasImageStreams
}

// printableRatio returns the fraction of printable runes in text. A rune
// counts as garbage when it falls in the Private Use Area (U+E000-U+F8FF),
// is the replacement character U+FFFD, or is a control character other than
// \n, \r, \t. CIDFonts without a ToUnicode map produce exactly that mix.
func printableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if garbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

func garbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == 0xFFFD:
		return true
	case r < 0x0020 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}

// wordlikeRatio returns the fraction of tokens whose length (2-15 runes)
// looks like a word. Character-by-character extraction yields one-rune
// tokens and drags the ratio toward zero.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	wordlike := 0
	for _, f := range fields {
		if n := len([]rune(f)); n >= 2 && n <= 15 {
			wordlike++
		}
	}
	return float64(wordlike) / float64(len(fields))
}

var visualRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(voir|cf\.?|see|refer\s+to)\s+(la\s+)?(figure|fig\.?|tableau|table|sch[eé]ma|schema|image|illustration|graphique|graph|diagramme|diagram)\s*\d`),
	regexp.MustCompile(`(?i)(figure|fig\.?|tableau|table)\s+\d+`),
}

// countVisualRefs counts mentions of figures, tables, and diagrams in text,
// in French and English.
func countVisualRefs(text string) int {
	count := 0
	for _, pat := range visualRefPatterns {
		count += len(pat.FindAllString(text, -1))
	}
	return count
}
