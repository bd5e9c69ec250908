package pdfinspect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInspectTextPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, buildTextPDF("Rapport annuel 2026"), 0644); err != nil {
		t.Fatal(err)
	}

	rep, err := Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	if rep.PageCount != 1 {
		t.Errorf("page count = %d, want 1", rep.PageCount)
	}
	if rep.Encrypted {
		t.Error("unencrypted fixture reported as encrypted")
	}
	if rep.SampledPages != 1 {
		t.Errorf("sampled pages = %d, want 1", rep.SampledPages)
	}
	if rep.PagesWithText != 1 || rep.EmptyPages != 0 {
		t.Errorf("text=%d empty=%d, want 1/0", rep.PagesWithText, rep.EmptyPages)
	}
	if rep.EmbeddedFileCount != 0 {
		t.Errorf("embedded files = %d, want 0", rep.EmbeddedFileCount)
	}
	if len(rep.PageSizes) != 1 || rep.PageSizes[0] != (PageSize{612, 792}) {
		t.Errorf("page sizes = %v, want [612x792]", rep.PageSizes)
	}
	if len(rep.Conclusions) != 0 {
		t.Errorf("unexpected conclusions: %v", rep.Conclusions)
	}
}

func TestInspectMissingFile(t *testing.T) {
	if _, err := Inspect(filepath.Join(t.TempDir(), "absent.pdf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRender(t *testing.T) {
	rep := &Report{
		Path:              "portfolio.pdf",
		PageCount:         40,
		Version:           "1.7",
		EmbeddedFileCount: 3,
		EmbeddedFileNames: []string{"annexe.pdf"},
		SampledPages:      40,
		PagesWithText:     4,
		EmptyPages:        30,
		PageSizes:         []PageSize{{595, 842}},
	}
	rep.Conclusions = conclusions(rep)

	var sb strings.Builder
	rep.Render(&sb)
	out := sb.String()

	for _, want := range []string{
		"DIAGNOSTIC PDF: portfolio.pdf",
		"Nombre de pages: 40",
		"Fichiers embeddés: 3",
		"annexe.pdf",
		"595 x 842 points",
		"fichiers embeddés (pièces jointes)",
		"Plus de 50% des pages sont vides",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

// buildTextPDF creates a valid single-page PDF carrying one text operator.
func buildTextPDF(text string) []byte {
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + text + ") Tj\nET"

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	fmt.Fprintf(&b, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream)

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xrefOffset := b.Len()
	b.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	return []byte(b.String())
}
