package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &Config{DBPath: filepath.Join(t.TempDir(), "cache.db")}
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testDeck writes a one-slide .pptx with a title and a body shape.
func testDeck(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)

	write := func(name, content string) {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}

	write("[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`)
	write("ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`)
	write("ppt/slides/slide1.xml", `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>
<p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>Bilan annuel</a:t></a:r></a:p></p:txBody></p:sp>
<p:sp><p:nvSpPr><p:cNvPr id="3" name="Text 2"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
<p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>Resultats du premier trimestre</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:sld>`)

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()
	return path
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestFormats(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/formats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Formats) != 6 {
		t.Errorf("formats = %v", resp.Formats)
	}
}

// WHAT: the same file extracted twice.
// WHY: the second call must come from the cache, not re-run the pipeline.
func TestExtractCachesByContentHash(t *testing.T) {
	s := newTestServer(t)
	deck := testDeck(t)

	var first, second extractResponse

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract", extractRequest{Path: deck})
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Error("first extraction reported cached")
	}
	if first.Method != "classic" || first.SlidesCount != 1 {
		t.Errorf("first = method %q, slides %d", first.Method, first.SlidesCount)
	}
	if !strings.Contains(first.Text, "Bilan annuel") {
		t.Errorf("text = %q", first.Text)
	}

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract", extractRequest{Path: deck})
	if rec.Code != http.StatusOK {
		t.Fatalf("second status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second extraction not served from cache")
	}
	if second.Text != first.Text || second.SHA256 != first.SHA256 {
		t.Error("cached response diverges from original")
	}
}

func TestExtractBadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract", extractRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty path: status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader("{broken"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("broken JSON: status = %d", w.Code)
	}
}

func TestExtractMissingFile(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract",
		extractRequest{Path: filepath.Join(t.TempDir(), "gone.pptx")})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

// WHAT: a server with root_dir set, fed a relative path and a traversal.
// WHY: request paths must stay confined when a root is configured.
func TestExtractRootDirConfinement(t *testing.T) {
	deck := testDeck(t)
	root := filepath.Dir(deck)

	cfg := &Config{DBPath: filepath.Join(t.TempDir(), "cache.db"), RootDir: root}
	s, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract",
		extractRequest{Path: filepath.Base(deck)})
	if rec.Code != http.StatusOK {
		t.Fatalf("relative path: status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/v1/extract",
		extractRequest{Path: "../../../etc/passwd"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal: status = %d", rec.Code)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestServer(t)
	deck := testDeck(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/metadata?path="+deck, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var md struct {
		Filename    string `json:"filename"`
		SlidesCount int    `json:"slides_count"`
		TotalShapes int    `json:"total_shapes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &md); err != nil {
		t.Fatal(err)
	}
	if md.Filename != "deck.pptx" || md.SlidesCount != 1 || md.TotalShapes != 2 {
		t.Errorf("metadata = %+v", md)
	}
}

func TestMetadataMissingFile(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/v1/metadata?path=/nonexistent.pptx", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/v1/metadata", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing param: status = %d", rec.Code)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte(`
listen: ":9090"
cache_cap: 32
ocr:
  api_key: "k"
  model: "pixtral-12b-2409"
`), 0644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.OCR.Model != "pixtral-12b-2409" {
		t.Errorf("OCR.Model = %q", cfg.OCR.Model)
	}
	if cfg.CacheCap != 32 {
		t.Errorf("CacheCap = %d", cfg.CacheCap)
	}
	// Absent fields fall back to defaults.
	if cfg.DBPath != "ragextract.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error")
	}
}
