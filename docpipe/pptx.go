// CLAUDE:SUMMARY Presentation extractor — delegates to the pptx package, one section per slide.
package docpipe

import (
	"context"
	"strconv"
	"strings"

	"github.com/Renopop/RAG-v7/pptx"
)

// extractPresentation delegates to the pptx package and maps each slide to
// one section. Recognition over slide images runs when the pipeline was
// configured with OCRImages and a reachable backend.
func (p *Pipeline) extractPresentation(ctx context.Context, path string) (string, []Section, error) {
	ext := pptx.New(pptx.Config{OCR: p.cfg.OCR, Logger: p.logger})

	opts := pptx.DefaultOptions()
	opts.OCRImages = p.cfg.OCRImages

	contents, err := ext.ExtractSlides(ctx, path, opts)
	if err != nil {
		return "", nil, err
	}

	var sections []Section
	var title string
	for _, c := range contents {
		text := pptx.FormatSlide(c, false)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if title == "" && c.Title != "" {
			title = c.Title
		}
		sections = append(sections, Section{
			Title: c.Title,
			Level: 1,
			Text:  text,
			Type:  "slide",
			Metadata: map[string]string{
				"slide":  strconv.Itoa(c.SlideNumber),
				"images": strconv.Itoa(c.ImageCount),
			},
		})
	}

	return title, sections, nil
}
