// CLAUDE:SUMMARY Configuration struct and defaults for the docpipe document extraction pipeline.
package docpipe

import (
	"log/slog"

	"github.com/Renopop/RAG-v7/ocr"
)

// Config configures the document pipeline.
type Config struct {
	// MaxFileSize is the maximum file size to process (default: 100 MB).
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// CSVDelimiter is the field separator for csv files (default: ';').
	CSVDelimiter rune `json:"csv_delimiter" yaml:"csv_delimiter"`

	// OCR configures the vision backend used for presentation images.
	// Recognition is skipped when the backend is unavailable.
	OCR ocr.Config `json:"ocr" yaml:"ocr"`

	// OCRImages runs recognition over presentation images during Extract.
	OCRImages bool `json:"ocr_images" yaml:"ocr_images"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.CSVDelimiter == 0 {
		c.CSVDelimiter = ';'
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
