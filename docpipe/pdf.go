// CLAUDE:SUMMARY PDF text extractor using pdfcpu — page-aware extraction with quality scoring.
package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// extractPDF extracts text from a PDF, one section per non-empty page, plus
// quality metrics that let callers decide whether the text is usable or the
// document needs OCR.
func extractPDF(path string) (string, []Section, *ExtractionQuality, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", nil, nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var sections []Section
	var fullText strings.Builder
	var title string
	totalChars := 0

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := pageContentText(ctx, pageNr)
		if pageText == "" {
			continue
		}

		totalChars += len([]rune(pageText))
		if title == "" {
			title = firstLine(pageText)
		}

		sections = append(sections, Section{
			Text:     pageText,
			Type:     "page",
			Metadata: map[string]string{"page": strconv.Itoa(pageNr)},
		})

		if fullText.Len() > 0 {
			fullText.WriteByte('\n')
		}
		fullText.WriteString(pageText)
	}

	if len(sections) == 0 {
		return "", nil, nil, fmt.Errorf("no text content found in PDF")
	}

	var charsPerPage float64
	if ctx.PageCount > 0 {
		charsPerPage = float64(totalChars) / float64(ctx.PageCount)
	}
	text := fullText.String()
	quality := &ExtractionQuality{
		PageCount:       ctx.PageCount,
		CharsPerPage:    charsPerPage,
		PrintableRatio:  printableRatio(text),
		WordlikeRatio:   wordlikeRatio(text),
		HasImageStreams: hasImageStreams(ctx),
		VisualRefCount:  countVisualRefs(text),
	}

	return title, sections, quality, nil
}

// pageContentText decodes one page's content stream and scrapes its text
// operators. Pages that fail to decode yield "".
func pageContentText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return scanContentStream(data)
}

// hasImageStreams reports whether the document carries image XObjects,
// preferring the optimizer's per-page index over a raw XRefTable scan.
func hasImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// pdfLiteralRe matches PDF string literals in parentheses: (text here)
var pdfLiteralRe = regexp.MustCompile(`\(([^)]*)\)`)

// scanContentStream walks content-stream lines and accumulates text from the
// show operators (Tj, TJ, ') plus whitespace from the positioning operators
// (Td, TD, T*). The stream is assumed uncompressed, which
// ReadValidateAndOptimize guarantees.
func scanContentStream(data []byte) string {
	var sb strings.Builder

	appendLiterals := func(line []byte, sep byte) {
		for _, m := range pdfLiteralRe.FindAllSubmatch(line, -1) {
			text := decodeLiteralString(m[1])
			if text == "" {
				continue
			}
			if sep != 0 {
				sb.WriteByte(sep)
			}
			sb.WriteString(text)
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			appendLiterals(line, 0)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			appendLiterals(line, '\n')
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return collapsePDFText(sb.String())
}

// decodeLiteralString resolves backslash escapes, including octal codes.
func decodeLiteralString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				break
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// collapsePDFText squeezes whitespace runs and drops non-printable runes.
func collapsePDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
