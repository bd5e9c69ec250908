// CLAUDE:SUMMARY Per-slide extraction state machine — title, body, tables, notes, image counters, conditional OCR.
package pptx

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Renopop/RAG-v7/ocr"
)

// SlideContent is the structured record produced for one slide. It is
// immutable after extractSlideContent returns; composition into document
// output happens by aggregation only.
type SlideContent struct {
	SlideNumber int      `json:"slide_number"`
	Title       string   `json:"title"`
	BodyText    string   `json:"body_text"`
	TableText   string   `json:"table_text"`
	Notes       string   `json:"notes"`
	ImageTexts  []string `json:"image_texts,omitempty"`
	ShapeCount  int      `json:"shape_count"`
	ImageCount  int      `json:"image_count"`
}

// extractSlideContent performs the single-pass traversal of a slide:
//
//  1. the first title-type placeholder with non-empty text becomes the title
//     and contributes nothing else;
//  2. pictures bump the image counter and still fall through to the table
//     check;
//  3. tables, text frames and groups accumulate into their buckets;
//  4. presenter notes are read after traversal;
//  5. when OCR is requested and images were counted, images are extracted
//     and recognized through rec.
//
// len(ImageTexts) ≤ images extracted ≤ ImageCount always holds: extraction
// may lose images that fail to resolve, recognition drops low-confidence
// results. No error escapes; partial content is still returned.
func extractSlideContent(ctx context.Context, slide *Slide, number int, ocrImages bool, rec ocr.Recognizer, logger *slog.Logger) SlideContent {
	content := SlideContent{SlideNumber: number}

	var bodyTexts, tableTexts []string
	imageCount := 0
	shapeCount := 0

	for _, sh := range slide.Shapes {
		shapeCount++

		if sh.HasTextFrame && sh.IsPlaceholder && isTitlePlaceholder(sh.PlaceholderType) {
			if t := sh.frameText(); t != "" && content.Title == "" {
				content.Title = t
				continue
			}
		}

		if sh.Kind == KindPicture {
			imageCount++
		}

		if sh.Table != nil {
			if tt := TableText(sh.Table); tt != "" {
				tableTexts = append(tableTexts, tt)
			}
		} else if sh.HasTextFrame {
			for _, p := range sh.Paragraphs {
				if t := strings.TrimSpace(p.Text()); t != "" {
					bodyTexts = append(bodyTexts, t)
				}
			}
		} else if sh.Kind == KindGroup {
			for _, child := range sh.Children {
				if ct := ShapeText(child, logger); ct != "" {
					bodyTexts = append(bodyTexts, ct)
				}
				if child.Kind == KindPicture {
					imageCount++
				}
			}
		}
	}

	content.Notes = slide.Notes
	content.BodyText = strings.Join(bodyTexts, "\n")
	content.TableText = strings.Join(tableTexts, "\n")
	content.ShapeCount = shapeCount
	content.ImageCount = imageCount

	if ocrImages && imageCount > 0 {
		logger.Debug("slide images detected, extracting", "slide", number, "count", imageCount)
		images := slide.ExtractImages(logger)
		if len(images) > 0 {
			content.ImageTexts = ocr.RecognizeBatch(ctx, rec, images, logger)
		} else {
			logger.Warn("slide images counted but none extracted", "slide", number, "count", imageCount)
		}
	} else if ocrImages {
		logger.Debug("slide has no images", "slide", number)
	}

	return content
}
