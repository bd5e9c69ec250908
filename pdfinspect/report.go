// CLAUDE:SUMMARY Rendu texte du rapport de diagnostic pour la CLI.
package pdfinspect

import (
	"fmt"
	"io"
	"strings"
)

// Render writes the human-readable diagnostic to w.
func (r *Report) Render(w io.Writer) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintf(w, "\n%s\nDIAGNOSTIC PDF: %s\n%s\n\n", rule, r.Path, rule)

	fmt.Fprintf(w, "Structure:\n")
	fmt.Fprintf(w, "   - Nombre de pages: %d\n", r.PageCount)
	if r.Version != "" {
		fmt.Fprintf(w, "   - Version PDF: %s\n", r.Version)
	}
	fmt.Fprintf(w, "   - Chiffré: %t\n", r.Encrypted)
	for _, key := range infoKeys {
		if v, ok := r.Metadata[key]; ok {
			fmt.Fprintf(w, "   - %s: %s\n", key, v)
		}
	}

	fmt.Fprintf(w, "   - Fichiers embeddés: %d\n", r.EmbeddedFileCount)
	for _, name := range r.EmbeddedFileNames {
		fmt.Fprintf(w, "     - %s\n", name)
	}

	fmt.Fprintf(w, "\nAnalyse des pages (sur les %d premières):\n", r.SampledPages)
	fmt.Fprintf(w, "   - Pages avec texte: %d\n", r.PagesWithText)
	fmt.Fprintf(w, "   - Pages avec images: %d\n", r.PagesWithImages)
	fmt.Fprintf(w, "   - Pages vides: %d\n", r.EmptyPages)

	if len(r.PageSizes) > 0 {
		fmt.Fprintf(w, "\nDimensions des pages:\n")
		for _, s := range r.PageSizes {
			fmt.Fprintf(w, "   - %d x %d points\n", s.Width, s.Height)
		}
	}

	fmt.Fprintf(w, "\n%s\nCONCLUSION:\n%s\n", rule, rule)
	if len(r.Conclusions) == 0 {
		fmt.Fprintf(w, "Rien d'anormal détecté.\n")
	}
	for _, c := range r.Conclusions {
		fmt.Fprintf(w, "ATTENTION: %s\n", c)
	}
	fmt.Fprintln(w)
}
