// CLAUDE:SUMMARY Configuration struct and capability check for the vision recognition client.
package ocr

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures access to the vision recognition service.
//
// All fields are explicit: nothing is read from ambient process state. The
// caller constructs one Config per document-extraction run and threads it
// through slide- and image-level operations.
type Config struct {
	// APIKey authenticates against the recognition endpoint.
	APIKey string `json:"api_key" yaml:"api_key"`

	// APIBase is the service root, e.g. "https://llm.example.com".
	// The client appends /v1/chat/completions.
	APIBase string `json:"api_base" yaml:"api_base"`

	// Model is the vision-capable model reference.
	Model string `json:"model" yaml:"model"`

	// HTTPClient, when set, is reused for every image in a batch.
	// A fresh client with Timeout is constructed otherwise.
	HTTPClient *http.Client `json:"-" yaml:"-"`

	// Timeout applies to each recognition call (default: 2 minutes).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Logger for per-image progress and recovered failures.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Available reports whether the recognition backend can be reached at all.
// Resolved once at startup and passed into the extractor; recognition
// against an unavailable backend fails with ErrUnavailable.
func (c Config) Available() bool {
	return c.APIKey != "" && c.APIBase != "" && c.Model != ""
}
