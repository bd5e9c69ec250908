// CLAUDE:SUMMARY CLI entry point for ragextract — document extraction, presentation metadata, PDF diagnostics, and the HTTP server.
// Command ragextract extracts text from office documents.
//
// Usage:
//
//	ragextract extract [-ocr] [-force-ocr] [-json] <file>
//	ragextract metadata <file.pptx>
//	ragextract inspect <file.pdf>
//	ragextract serve -config ragextract.yaml
//	ragextract mcp
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Renopop/RAG-v7/docpipe"
	"github.com/Renopop/RAG-v7/ocr"
	"github.com/Renopop/RAG-v7/pdfinspect"
	"github.com/Renopop/RAG-v7/pptx"
	"github.com/Renopop/RAG-v7/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "extract":
		cmdExtract(os.Args[2:])
	case "metadata":
		cmdMetadata(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ragextract — text extraction from office documents

usage:
  ragextract extract  [-ocr] [-force-ocr] [-json] <file>
  ragextract metadata <file.pptx>
  ragextract inspect  <file.pdf>
  ragextract serve    -config <file>
  ragextract mcp

extract   Extracts text (csv, pptx, pdf, md, txt, html). -ocr enables image
          recognition for presentations when the backend allows it;
          -force-ocr skips the image-density heuristic.
metadata  Prints presentation document properties as JSON.
inspect   Prints a structural PDF diagnostic.
serve     Runs the HTTP extraction API.
mcp       Serves the extraction tools over MCP on stdin/stdout.

The OCR backend is configured through OCR_API_KEY, OCR_API_BASE and
OCR_MODEL, or through the serve config file.
`)
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func ocrFromEnv() ocr.Config {
	return ocr.Config{
		APIKey:  os.Getenv("OCR_API_KEY"),
		APIBase: os.Getenv("OCR_API_BASE"),
		Model:   os.Getenv("OCR_MODEL"),
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	useOCR := fs.Bool("ocr", false, "recognize presentation images when image-heavy")
	forceOCR := fs.Bool("force-ocr", false, "recognize presentation images unconditionally")
	noNotes := fs.Bool("no-notes", false, "omit presenter notes from presentation output")
	noTables := fs.Bool("no-tables", false, "omit table text from presentation output")
	jsonOut := fs.Bool("json", false, "print the structured result as JSON")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("extract requires a file path")
	}
	path := fs.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level)
	ctx := context.Background()

	if isPresentation(path) {
		ex := pptx.New(pptx.Config{OCR: ocrFromEnv(), Logger: logger})

		// Recognition requests go through the adaptive path, which
		// reports method and image counters.
		if *useOCR || *forceOCR {
			res := ex.ProcessWithOCR(ctx, path, *forceOCR)
			if res.Method == "error" {
				fatal("extract failed: %s", strings.Join(res.Errors, "; "))
			}
			if *jsonOut {
				printJSON(res)
				return
			}
			fmt.Println(res.Text)
			fmt.Fprintf(os.Stderr, "method=%s slides=%d images=%d ocr=%d (%.2fs)\n",
				res.Method, res.SlidesCount, res.ImagesCount, res.ImagesOCR, res.ProcessingTime)
			return
		}

		opts := pptx.Options{IncludeNotes: !*noNotes, IncludeTables: !*noTables}
		text, err := ex.ExtractText(ctx, path, opts)
		if err != nil {
			fatal("extract failed: %v", err)
		}
		fmt.Println(text)
		return
	}

	pipe := docpipe.New(docpipe.Config{OCR: ocrFromEnv(), Logger: logger})
	doc, err := pipe.Extract(ctx, path)
	if err != nil {
		fatal("extract failed: %v", err)
	}
	if *jsonOut {
		printJSON(doc)
		return
	}
	fmt.Println(doc.RawText)
}

func cmdMetadata(args []string) {
	if len(args) < 1 {
		fatal("metadata requires a .pptx path")
	}

	md, err := pptx.ExtractMetadata(args[0])
	if err != nil {
		fatal("metadata failed: %v", err)
	}
	printJSON(md)
}

func cmdInspect(args []string) {
	if len(args) < 1 {
		fatal("inspect requires a .pdf path")
	}

	report, err := pdfinspect.Inspect(args[0])
	if err != nil {
		fatal("inspect failed: %v", err)
	}
	report.Render(os.Stdout)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to the YAML config file")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Parse(args)

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := newLogger(level)

	cfg := &server.Config{OCR: ocrFromEnv()}
	if *configPath != "" {
		loaded, err := server.LoadFile(*configPath)
		if err != nil {
			fatal("load config: %v", err)
		}
		cfg = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		fatal("server init: %v", err)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error("server: fatal", "error", err)
		os.Exit(1)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	// stdout carries the protocol; logs must stay on stderr.
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	pipe := docpipe.New(docpipe.Config{OCR: ocrFromEnv(), Logger: logger})
	srv := pipe.NewMCPServer(&mcp.Implementation{Name: "ragextract", Version: "1.0.0"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logger.Error("mcp: fatal", "error", err)
		os.Exit(1)
	}
}

func isPresentation(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pptx")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
