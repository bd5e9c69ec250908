// CLAUDE:SUMMARY Diagnostic PDF — compte pages/fichiers embeddés, échantillonne texte/images, détecte PDF suspects.
// Package pdfinspect diagnoses PDF files whose page counts or contents look
// wrong: portfolios with embedded attachments, scans without a text layer,
// mostly-empty documents.
//
// The report is diagnostic output only; nothing is persisted.
package pdfinspect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const (
	// contentSampleLimit bounds the per-page text/image scan.
	contentSampleLimit = 100
	// sizeSampleLimit bounds the page-dimension scan.
	sizeSampleLimit = 20
)

// PageSize is a rounded page dimension in points.
type PageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Report aggregates the diagnostics for one PDF.
type Report struct {
	Path      string            `json:"path"`
	PageCount int               `json:"page_count"`
	Version   string            `json:"version"`
	Encrypted bool              `json:"encrypted"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	EmbeddedFileCount int      `json:"embedded_file_count"`
	EmbeddedFileNames []string `json:"embedded_file_names,omitempty"`

	// Content sampling over the first contentSampleLimit pages.
	SampledPages    int `json:"sampled_pages"`
	PagesWithText   int `json:"pages_with_text"`
	PagesWithImages int `json:"pages_with_images"`
	EmptyPages      int `json:"empty_pages"`

	// Unique page sizes over the first sizeSampleLimit pages.
	PageSizes []PageSize `json:"page_sizes"`

	Conclusions []string `json:"conclusions,omitempty"`
}

// Inspect reads and validates a PDF, then samples its pages for diagnostics.
func Inspect(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	rep := &Report{
		Path:      path,
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
		Metadata:  infoMetadata(ctx),
	}
	if ctx.HeaderVersion != nil {
		rep.Version = ctx.HeaderVersion.String()
	}

	rep.EmbeddedFileCount, rep.EmbeddedFileNames = scanEmbeddedFiles(ctx)
	samplePageContent(ctx, rep)
	samplePageSizes(ctx, rep)
	rep.Conclusions = conclusions(rep)

	return rep, nil
}

// infoKeys are the Info-dict entries worth surfacing, in render order.
var infoKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// infoMetadata pulls string values out of the document Info dict.
func infoMetadata(ctx *model.Context) map[string]string {
	if ctx.Info == nil {
		return nil
	}
	obj, err := ctx.Dereference(*ctx.Info)
	if err != nil {
		return nil
	}
	dict, ok := obj.(types.Dict)
	if !ok {
		return nil
	}

	md := make(map[string]string)
	for _, key := range infoKeys {
		raw, found := dict.Find(key)
		if !found {
			continue
		}
		raw, err := ctx.Dereference(raw)
		if err != nil {
			continue
		}
		switch v := raw.(type) {
		case types.StringLiteral:
			if s, err := types.StringLiteralToString(v); err == nil && s != "" {
				md[key] = s
			}
		case types.HexLiteral:
			if s, err := types.HexLiteralToString(v); err == nil && s != "" {
				md[key] = s
			}
		}
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// scanEmbeddedFiles counts /Type /EmbeddedFile streams and collects the
// filenames declared by /Type /Filespec dicts. Attachments are the usual
// cause of "Adobe shows fewer pages" reports: the extra pages live in
// embedded documents.
func scanEmbeddedFiles(ctx *model.Context) (int, []string) {
	count := 0
	var names []string

	for _, entry := range ctx.Table {
		if entry == nil || entry.Free {
			continue
		}
		switch obj := entry.Object.(type) {
		case types.StreamDict:
			if typ, found := obj.Find("Type"); found {
				if name, ok := typ.(types.Name); ok && name == "EmbeddedFile" {
					count++
				}
			}
		case types.Dict:
			typ, found := obj.Find("Type")
			if !found {
				continue
			}
			if name, ok := typ.(types.Name); !ok || name != "Filespec" {
				continue
			}
			for _, key := range []string{"UF", "F"} {
				if raw, found := obj.Find(key); found {
					if sl, ok := raw.(types.StringLiteral); ok {
						if s, err := types.StringLiteralToString(sl); err == nil && s != "" {
							names = append(names, s)
							break
						}
					}
				}
			}
		}
	}

	sort.Strings(names)
	return count, names
}

// samplePageContent classifies the first pages as text-bearing,
// image-bearing, or empty.
func samplePageContent(ctx *model.Context, rep *Report) {
	limit := ctx.PageCount
	if limit > contentSampleLimit {
		limit = contentSampleLimit
	}
	rep.SampledPages = limit

	for pageNr := 1; pageNr <= limit; pageNr++ {
		hasText := pageHasText(ctx, pageNr)
		hasImages := len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0

		if hasText {
			rep.PagesWithText++
		}
		if hasImages {
			rep.PagesWithImages++
		}
		if !hasText && !hasImages {
			rep.EmptyPages++
		}
	}
}

// textShowOps are the content-stream operators that draw text.
var textShowOps = [][]byte{[]byte("Tj"), []byte("TJ"), []byte("'")}

// pageHasText reports whether the page's content stream carries text-show
// operators with a non-empty string literal.
func pageHasText(ctx *model.Context, pageNr int) bool {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return false
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return false
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		for _, op := range textShowOps {
			if bytes.HasSuffix(line, op) && bytes.Contains(line, []byte("(")) {
				return true
			}
		}
	}
	return false
}

// samplePageSizes records the unique rounded page dimensions of the first
// pages, mixed formats being a portfolio/merge hint.
func samplePageSizes(ctx *model.Context, rep *Report) {
	dims, err := ctx.PageDims()
	if err != nil {
		return
	}
	if len(dims) > sizeSampleLimit {
		dims = dims[:sizeSampleLimit]
	}

	seen := make(map[PageSize]bool)
	for _, d := range dims {
		size := PageSize{Width: int(d.Width + 0.5), Height: int(d.Height + 0.5)}
		if !seen[size] {
			seen[size] = true
			rep.PageSizes = append(rep.PageSizes, size)
		}
	}
	sort.Slice(rep.PageSizes, func(i, j int) bool {
		if rep.PageSizes[i].Width != rep.PageSizes[j].Width {
			return rep.PageSizes[i].Width < rep.PageSizes[j].Width
		}
		return rep.PageSizes[i].Height < rep.PageSizes[j].Height
	})
}

// conclusions derives the human-facing warnings from the sampled counters.
func conclusions(rep *Report) []string {
	var out []string
	if rep.EmbeddedFileCount > 0 {
		out = append(out, fmt.Sprintf(
			"Le PDF contient %d fichiers embeddés (pièces jointes) — ils peuvent expliquer un nombre de pages élevé.",
			rep.EmbeddedFileCount))
	}
	if rep.SampledPages > 0 && rep.EmptyPages*2 > rep.SampledPages {
		out = append(out, "Plus de 50% des pages sont vides — PDF potentiellement corrompu.")
	}
	return out
}
