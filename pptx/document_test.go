package pptx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Renopop/RAG-v7/ocr"
)

func tableShape() string {
	return `<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="5" name="Table 4"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr>
<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table">
<a:tbl><a:tblGrid/>
<a:tr><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>Nom</a:t></a:r></a:p></a:txBody></a:tc>
<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>Valeur</a:t></a:r></a:p></a:txBody></a:tc></a:tr>
<a:tr><a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:t>a</a:t></a:r></a:p></a:txBody></a:tc>
<a:tc><a:txBody><a:bodyPr/><a:p></a:p></a:txBody></a:tc></a:tr>
<a:tr><a:tc><a:txBody><a:bodyPr/><a:p></a:p></a:txBody></a:tc>
<a:tc><a:txBody><a:bodyPr/><a:p></a:p></a:txBody></a:tc></a:tr>
</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`
}

func TestTableTextPositionalJoin(t *testing.T) {
	parts := basicDeck(slideXML(tableShape()))
	prs, err := Open(buildPPTX(t, parts))
	if err != nil {
		t.Fatal(err)
	}

	sh := prs.Slides[0].Shapes[0]
	if sh.Table == nil {
		t.Fatal("graphicFrame did not yield a table")
	}
	got := TableText(sh.Table)
	want := "Nom | Valeur\na | "
	if got != want {
		t.Errorf("TableText = %q, want %q (partial row keeps positional join, empty row dropped)", got, want)
	}
}

func TestExtractTextDocumentLayout(t *testing.T) {
	parts := basicDeck(
		slideXML(titleShape("Intro")+bodyShape("Bienvenue")),
		slideXML(tableShape()),
	)
	ext := New(Config{Logger: testLogger()})
	text, err := ext.ExtractText(context.Background(), buildPPTX(t, parts), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	want := "--- Slide 1 ---\n# Intro\nBienvenue\n\n--- Slide 2 ---\nNom | Valeur\na | "
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestExtractTextOptionFlags(t *testing.T) {
	notesRels := `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide1.xml"/>
</Relationships>`
	notes := `<?xml version="1.0" encoding="UTF-8"?>
<p:notes xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>
<p:sp><p:nvSpPr><p:cNvPr id="2" name="N"/><p:cNvSpPr/><p:nvPr><p:ph type="body"/></p:nvPr></p:nvSpPr>
<p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>penser au cafe</a:t></a:r></a:p></p:txBody></p:sp>
</p:spTree></p:cSld></p:notes>`

	parts := basicDeck(slideXML(bodyShape("contenu") + tableShape()))
	parts["ppt/slides/_rels/slide1.xml.rels"] = notesRels
	parts["ppt/notesSlides/notesSlide1.xml"] = notes
	path := buildPPTX(t, parts)

	ext := New(Config{Logger: testLogger()})

	full, err := ext.ExtractText(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(full, "[Notes: penser au cafe]") {
		t.Errorf("default options must include notes, got %q", full)
	}
	if !strings.Contains(full, "Nom | Valeur") {
		t.Errorf("default options must include tables, got %q", full)
	}

	bare, err := ext.ExtractText(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(bare, "[Notes:") || strings.Contains(bare, "Nom | Valeur") {
		t.Errorf("disabled options leaked into output: %q", bare)
	}
}

func TestExtractTextMissingFile(t *testing.T) {
	ext := New(Config{Logger: testLogger()})
	_, err := ext.ExtractText(context.Background(), filepath.Join(t.TempDir(), "absent.pptx"), DefaultOptions())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestExtractTextEmptyDeck(t *testing.T) {
	ext := New(Config{Logger: testLogger()})
	text, err := ext.ExtractText(context.Background(), buildPPTX(t, basicDeck()), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("empty deck produced %q", text)
	}
}

// visionStub serves the chat-completions shape the recognition client expects.
func visionStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":` + reply + `}}]}`))
	}))
}

// imageHeavyDeck builds 3 slides carrying n top-level pictures in total.
func imageHeavyDeck(n int) map[string]string {
	pics := [3]string{}
	for i := 0; i < n; i++ {
		pics[i%3] += pictureShape("rId2")
	}
	parts := basicDeck(
		slideXML(bodyShape("un")+pics[0]),
		slideXML(bodyShape("deux")+pics[1]),
		slideXML(bodyShape("trois")+pics[2]),
	)
	for i := 1; i <= 3; i++ {
		parts["ppt/slides/_rels/slide"+itoa(i)+".xml.rels"] = imageRels
	}
	parts["ppt/media/image1.png"] = "png bytes"
	return parts
}

func ocrTestConfig(srv *httptest.Server) ocr.Config {
	return ocr.Config{APIKey: "test-key", APIBase: srv.URL, Model: "pixtral-test"}
}

func TestProcessWithOCRAdaptiveThreshold(t *testing.T) {
	srv := visionStub(t, `"{\"text\":\"LOGO ACME\",\"confidence\":0.9}"`)
	defer srv.Close()

	ext := New(Config{OCR: ocrTestConfig(srv), Logger: testLogger()})

	// 7 images over 3 slides exceeds twice the slide count: OCR turns on.
	res := ext.ProcessWithOCR(context.Background(), buildPPTX(t, imageHeavyDeck(7)), false)
	if res.Method != "ocr" || !res.OCRUsed {
		t.Fatalf("method = %q ocr_used = %v, want adaptive OCR", res.Method, res.OCRUsed)
	}
	if res.SlidesCount != 3 || res.ImagesCount != 7 {
		t.Errorf("slides = %d images = %d, want 3/7", res.SlidesCount, res.ImagesCount)
	}
	if res.ImagesOCR != 7 {
		t.Errorf("images_ocr = %d, want 7", res.ImagesOCR)
	}
	if !strings.Contains(res.Text, "[Image: LOGO ACME]") {
		t.Errorf("recognized text missing from output: %q", res.Text)
	}

	// 6 images over 3 slides is exactly twice the slide count: stays classic.
	res = ext.ProcessWithOCR(context.Background(), buildPPTX(t, imageHeavyDeck(6)), false)
	if res.Method != "classic" || res.OCRUsed {
		t.Fatalf("method = %q ocr_used = %v, want classic at the boundary", res.Method, res.OCRUsed)
	}
	if res.ImagesCount != 6 || res.ImagesOCR != 0 {
		t.Errorf("images = %d images_ocr = %d, want 6/0", res.ImagesCount, res.ImagesOCR)
	}
	if strings.Contains(res.Text, "[Image:") {
		t.Errorf("classic output carries OCR markers: %q", res.Text)
	}
}

func TestProcessWithOCRForced(t *testing.T) {
	srv := visionStub(t, `"{\"text\":\"PLAN 2026\",\"confidence\":0.8}"`)
	defer srv.Close()

	ext := New(Config{OCR: ocrTestConfig(srv), Logger: testLogger()})
	res := ext.ProcessWithOCR(context.Background(), buildPPTX(t, imageHeavyDeck(1)), true)

	if res.Method != "ocr" || !res.OCRUsed {
		t.Fatalf("method = %q, want forced ocr", res.Method)
	}
	if res.ImagesCount != 1 || res.ImagesOCR != 1 {
		t.Errorf("images = %d images_ocr = %d, want 1/1", res.ImagesCount, res.ImagesOCR)
	}
}

func TestProcessWithOCRBackendUnavailable(t *testing.T) {
	ext := New(Config{Logger: testLogger()})
	res := ext.ProcessWithOCR(context.Background(), buildPPTX(t, imageHeavyDeck(7)), false)

	// Image-heavy but no backend configured: extraction degrades to classic.
	if res.Method != "classic" || res.OCRUsed {
		t.Fatalf("method = %q ocr_used = %v, want classic without backend", res.Method, res.OCRUsed)
	}
	if res.ImagesCount != 7 {
		t.Errorf("images = %d, want counting to survive OCR refusal", res.ImagesCount)
	}
}

func TestProcessWithOCRLowConfidenceDropped(t *testing.T) {
	srv := visionStub(t, `"{\"text\":\"bruit\",\"confidence\":0.2}"`)
	defer srv.Close()

	ext := New(Config{OCR: ocrTestConfig(srv), Logger: testLogger()})
	res := ext.ProcessWithOCR(context.Background(), buildPPTX(t, imageHeavyDeck(7)), false)

	if res.Method != "ocr" {
		t.Fatalf("method = %q, want ocr", res.Method)
	}
	if res.ImagesOCR != 0 {
		t.Errorf("images_ocr = %d, want low-confidence results dropped", res.ImagesOCR)
	}
	if strings.Contains(res.Text, "[Image:") {
		t.Errorf("dropped results leaked into text: %q", res.Text)
	}
}

func TestProcessWithOCRErrorResult(t *testing.T) {
	ext := New(Config{Logger: testLogger()})
	res := ext.ProcessWithOCR(context.Background(), filepath.Join(t.TempDir(), "absent.pptx"), false)

	if res.Method != "error" {
		t.Fatalf("method = %q, want error", res.Method)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("errors = %v, want one entry", res.Errors)
	}
}

func TestExtractMetadata(t *testing.T) {
	parts := basicDeck(
		slideXML(titleShape("Bilan")+pictureShape("rId2")+tableShape()),
		slideXML(bodyShape("texte")),
	)
	parts["ppt/slides/_rels/slide1.xml.rels"] = imageRels
	parts["ppt/media/image1.png"] = "png"
	parts["docProps/core.xml"] = `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
 xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/">
<dc:title>Bilan annuel</dc:title><dc:creator>M. Dupont</dc:creator>
<dc:subject>finances</dc:subject>
<cp:lastModifiedBy>Mme Martin</cp:lastModifiedBy>
<dcterms:created>2026-01-05T09:00:00Z</dcterms:created>
<dcterms:modified>2026-02-10T17:30:00Z</dcterms:modified>
</cp:coreProperties>`

	md, err := ExtractMetadata(buildPPTX(t, parts))
	if err != nil {
		t.Fatal(err)
	}

	if md.Title != "Bilan annuel" || md.Author != "M. Dupont" {
		t.Errorf("core props: title=%q author=%q", md.Title, md.Author)
	}
	if md.LastModifiedBy != "Mme Martin" {
		t.Errorf("last_modified_by = %q", md.LastModifiedBy)
	}
	if md.SlidesCount != 2 {
		t.Errorf("slides_count = %d", md.SlidesCount)
	}
	if md.TotalShapes != 4 || md.TotalImages != 1 || md.TotalTables != 1 {
		t.Errorf("counts shapes=%d images=%d tables=%d, want 4/1/1",
			md.TotalShapes, md.TotalImages, md.TotalTables)
	}
	if md.SlidesWithNotes != 0 {
		t.Errorf("slides_with_notes = %d, want 0", md.SlidesWithNotes)
	}
}

func TestExtractMetadataMissingFile(t *testing.T) {
	_, err := ExtractMetadata(filepath.Join(t.TempDir(), "absent.pptx"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
