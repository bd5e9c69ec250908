// CLAUDE:SUMMARY Document-level extraction — classic text extraction and the adaptive-OCR entry point with its image heuristic.
package pptx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Renopop/RAG-v7/ocr"
)

// Config configures a document Extractor.
type Config struct {
	// OCR holds the recognition backend settings, threaded explicitly
	// through slide- and image-level operations.
	OCR ocr.Config

	// Logger for progress and recovered failures.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.OCR.Logger == nil {
		c.OCR.Logger = c.Logger
	}
}

// Extractor extracts text from presentation files.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, logger: cfg.Logger}
}

// Options controls one extraction run.
type Options struct {
	// OCRImages runs recognition over slide images when the backend is
	// available.
	OCRImages bool

	// IncludeNotes embeds presenter notes as "[Notes: …]" lines.
	IncludeNotes bool

	// IncludeTables embeds table text in slide output.
	IncludeTables bool
}

// DefaultOptions enables notes and tables without OCR.
func DefaultOptions() Options {
	return Options{IncludeNotes: true, IncludeTables: true}
}

// Result is the structured summary returned by ProcessWithOCR.
type Result struct {
	Text           string   `json:"text"`
	Method         string   `json:"method"` // classic | ocr | error
	SlidesCount    int      `json:"slides_count"`
	ImagesCount    int      `json:"images_count"`
	ImagesOCR      int      `json:"images_ocr"`
	OCRUsed        bool     `json:"ocr_used"`
	ProcessingTime float64  `json:"processing_time"` // seconds
	Errors         []string `json:"errors,omitempty"`
}

type docStats struct {
	slides         int
	totalImages    int
	imagesWithText int
}

// ExtractText opens the presentation and returns the concatenated slide
// texts, double-newline-joined. It fails with ErrNotFound when the path is
// not a regular file and with a wrapped cause when the container cannot be
// opened. Per-slide failures never propagate: affected slides contribute
// whatever was accumulated before the failure.
func (e *Extractor) ExtractText(ctx context.Context, path string, opts Options) (string, error) {
	text, _, err := e.extractDocument(ctx, path, opts)
	return text, err
}

// ExtractSlides returns the structured per-slide records without document
// formatting. Used by pipelines that build their own sections.
func (e *Extractor) ExtractSlides(ctx context.Context, path string, opts Options) ([]SlideContent, error) {
	if err := checkRegularFile(path); err != nil {
		return nil, err
	}
	prs, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presentation %s: %w", filepath.Base(path), err)
	}

	rec := e.recognizer(opts.OCRImages)
	contents := make([]SlideContent, 0, len(prs.Slides))
	for i, slide := range prs.Slides {
		contents = append(contents, extractSlideContent(ctx, slide, i+1, opts.OCRImages, rec, e.logger))
	}
	return contents, nil
}

func (e *Extractor) extractDocument(ctx context.Context, path string, opts Options) (string, docStats, error) {
	var stats docStats

	if err := checkRegularFile(path); err != nil {
		return "", stats, err
	}

	filename := filepath.Base(path)
	e.logger.Info("extracting presentation",
		"file", filename, "ocr", opts.OCRImages, "ocr_available", e.cfg.OCR.Available())

	prs, err := Open(path)
	if err != nil {
		return "", stats, fmt.Errorf("open presentation %s: %w", filename, err)
	}
	stats.slides = len(prs.Slides)

	// One recognition client per document, reused across every image.
	rec := e.recognizer(opts.OCRImages)

	var allTexts []string
	for i, slide := range prs.Slides {
		content := extractSlideContent(ctx, slide, i+1, opts.OCRImages, rec, e.logger)

		parts := []string{fmt.Sprintf("--- Slide %d ---", content.SlideNumber)}
		if content.Title != "" {
			parts = append(parts, "# "+content.Title)
		}
		if content.BodyText != "" {
			parts = append(parts, content.BodyText)
		}
		if opts.IncludeTables && content.TableText != "" {
			parts = append(parts, content.TableText)
		}
		if opts.IncludeNotes && content.Notes != "" {
			parts = append(parts, fmt.Sprintf("[Notes: %s]", content.Notes))
		}
		for _, imgText := range content.ImageTexts {
			parts = append(parts, fmt.Sprintf("[Image: %s]", imgText))
		}

		stats.totalImages += content.ImageCount
		stats.imagesWithText += len(content.ImageTexts)

		slideText := strings.Join(parts, "\n")
		if strings.TrimSpace(slideText) != "" {
			allTexts = append(allTexts, slideText)
		}
	}

	e.logger.Info("extraction done",
		"file", filename, "slides", stats.slides,
		"images", stats.totalImages, "images_with_text", stats.imagesWithText)

	return strings.Join(allTexts, "\n\n"), stats, nil
}

// recognizer builds the document-scoped recognition client, or nil when OCR
// is off or the backend is unavailable.
func (e *Extractor) recognizer(ocrImages bool) ocr.Recognizer {
	if !ocrImages {
		return nil
	}
	if !e.cfg.OCR.Available() {
		e.logger.Warn("OCR requested but recognition backend unavailable")
		return nil
	}
	return ocr.NewClient(e.cfg.OCR)
}

// ProcessWithOCR extracts a presentation, deciding automatically whether
// recognition should run: unless forced, top-level pictures are counted in a
// pre-pass and OCR is enabled when they average more than two per slide and
// the backend is available. The returned counters come from the extraction
// pass itself, not from re-scanning the output text.
func (e *Extractor) ProcessWithOCR(ctx context.Context, path string, forceOCR bool) Result {
	start := time.Now()
	filename := filepath.Base(path)

	if err := checkRegularFile(path); err != nil {
		return errorResult(err, start)
	}
	prs, err := Open(path)
	if err != nil {
		return errorResult(fmt.Errorf("open presentation %s: %w", filename, err), start)
	}

	totalSlides := len(prs.Slides)
	totalImages := 0
	shouldOCR := forceOCR

	if !shouldOCR {
		// Pre-pass over top-level pictures only; grouped images do not
		// count toward the heuristic.
		for _, slide := range prs.Slides {
			for _, sh := range slide.Shapes {
				if sh.Kind == KindPicture {
					totalImages++
				}
			}
		}
		if totalImages > totalSlides*2 {
			e.logger.Info("image-heavy presentation, OCR recommended",
				"file", filename, "images", totalImages, "slides", totalSlides)
			shouldOCR = e.cfg.OCR.Available()
		}
	}

	opts := DefaultOptions()
	opts.OCRImages = shouldOCR
	text, stats, err := e.extractDocument(ctx, path, opts)
	if err != nil {
		return errorResult(err, start)
	}

	if forceOCR {
		// No pre-pass ran; report the traversal counter instead.
		totalImages = stats.totalImages
	}

	method := "classic"
	imagesOCR := 0
	if shouldOCR {
		method = "ocr"
		imagesOCR = stats.imagesWithText
	}

	res := Result{
		Text:           text,
		Method:         method,
		SlidesCount:    totalSlides,
		ImagesCount:    totalImages,
		ImagesOCR:      imagesOCR,
		OCRUsed:        shouldOCR,
		ProcessingTime: time.Since(start).Seconds(),
	}
	e.logger.Info("presentation processed",
		"file", filename, "slides", res.SlidesCount, "images", res.ImagesCount,
		"ocr", res.OCRUsed, "seconds", res.ProcessingTime)
	return res
}

func errorResult(err error, start time.Time) Result {
	return Result{
		Method:         "error",
		Errors:         []string{err.Error()},
		ProcessingTime: time.Since(start).Seconds(),
	}
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return nil
}
