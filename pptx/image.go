// CLAUDE:SUMMARY Slide image collection — format tag from declared content type, one level into groups (nested images tagged png).
package pptx

import (
	"log/slog"
	"strings"

	"github.com/Renopop/RAG-v7/ocr"
)

// imageFormat maps a declared content type to a recognition format tag.
// Unrecognized types default to png.
func imageFormat(contentType string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return "jpeg"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "bmp"):
		return "bmp"
	case strings.Contains(contentType, "tiff"):
		return "tiff"
	default:
		return "png"
	}
}

// ExtractImages collects the slide's embedded raster images in discovery
// order. Top-level pictures carry a format tag inferred from their declared
// content type; pictures one level inside a group are tagged png
// unconditionally — format detection is not attempted for nested images.
// Per-image failures are logged and skipped; the function never fails.
func (s *Slide) ExtractImages(logger *slog.Logger) []ocr.Image {
	if logger == nil {
		logger = slog.Default()
	}

	var images []ocr.Image
	for _, sh := range s.Shapes {
		switch sh.Kind {
		case KindPicture:
			data, contentType, ok := s.imagePayload(sh.ImageRel)
			if !ok {
				logger.Debug("image payload missing", "slide", s.Number, "rel", sh.ImageRel)
				continue
			}
			images = append(images, ocr.Image{Data: data, Format: imageFormat(contentType)})

		case KindGroup:
			for _, child := range sh.Children {
				if child.Kind != KindPicture {
					continue
				}
				data, _, ok := s.imagePayload(child.ImageRel)
				if !ok {
					logger.Debug("grouped image payload missing", "slide", s.Number, "rel", child.ImageRel)
					continue
				}
				images = append(images, ocr.Image{Data: data, Format: "png"})
			}
		}
	}
	return images
}
