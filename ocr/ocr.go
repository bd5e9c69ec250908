// CLAUDE:SUMMARY Batch OCR over slide images with confidence filtering — low-confidence results are skipped, never errors.
// Package ocr recognizes text embedded in images through a vision-capable
// language model.
//
// The package exposes a small Recognizer interface plus RecognizeBatch, which
// applies the confidence policy used by the presentation pipeline: a result
// is kept only when its text is non-empty and its confidence exceeds 0.3.
// Failures on individual images are logged and skipped; a batch never aborts.
package ocr

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnavailable is returned when the recognition backend is not configured.
var ErrUnavailable = errors.New("ocr: recognition backend unavailable")

// minConfidence is the exclusive acceptance threshold: results at exactly
// this value are dropped.
const minConfidence = 0.3

// Image is a raster image extracted from a document, with its format tag
// (png, jpeg, gif, bmp or tiff).
type Image struct {
	Data   []byte
	Format string
}

// Result is one recognition outcome. Confidence is in [0,1].
type Result struct {
	Text       string
	Confidence float64
}

// Recognizer turns one image into text. Implementations are expected to be
// safe for reuse across a whole document (one per document, not per image).
type Recognizer interface {
	Recognize(ctx context.Context, img Image) (Result, error)
}

// RecognizeBatch runs rec over images in order and returns the accepted
// texts, in input order. Skipped images leave no placeholder: callers cannot
// correlate output positions back to input positions.
//
// A nil Recognizer (backend unavailable) or an empty batch yields an empty
// result without error.
func RecognizeBatch(ctx context.Context, rec Recognizer, images []Image, logger *slog.Logger) []string {
	if rec == nil || len(images) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	texts := make([]string, 0, len(images))
	for i, img := range images {
		logger.Debug("ocr image",
			"index", i+1, "total", len(images),
			"format", img.Format, "size_kb", len(img.Data)/1024)

		res, err := rec.Recognize(ctx, img)
		if err != nil {
			logger.Warn("ocr image failed", "index", i+1, "error", err)
			continue
		}

		if res.Text != "" && res.Confidence > minConfidence {
			texts = append(texts, res.Text)
			logger.Debug("ocr image accepted",
				"index", i+1, "chars", len(res.Text), "confidence", res.Confidence)
		} else {
			logger.Debug("ocr image skipped", "index", i+1, "confidence", res.Confidence)
		}
	}

	logger.Info("ocr batch done", "accepted", len(texts), "total", len(images))
	return texts
}
