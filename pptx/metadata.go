// CLAUDE:SUMMARY Document properties and aggregate shape/image/table/notes counts, independent of text extraction.
package pptx

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Metadata is the document-property record, independent of text extraction.
type Metadata struct {
	Filename       string `json:"filename"`
	SlidesCount    int    `json:"slides_count"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Subject        string `json:"subject"`
	Keywords       string `json:"keywords"`
	Created        string `json:"created"`
	Modified       string `json:"modified"`
	LastModifiedBy string `json:"last_modified_by"`

	TotalShapes     int `json:"total_shapes"`
	TotalImages     int `json:"total_images"`
	TotalTables     int `json:"total_tables"`
	SlidesWithNotes int `json:"slides_with_notes"`
}

// ExtractMetadata reads core document properties and counts shapes, images,
// tables and slides carrying non-empty notes. Counts cover top-level shapes
// only.
func ExtractMetadata(path string) (*Metadata, error) {
	if err := checkRegularFile(path); err != nil {
		return nil, err
	}
	prs, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presentation %s: %w", filepath.Base(path), err)
	}

	md := &Metadata{
		Filename:       filepath.Base(path),
		SlidesCount:    len(prs.Slides),
		Title:          prs.core.Title,
		Author:         prs.core.Creator,
		Subject:        prs.core.Subject,
		Keywords:       prs.core.Keywords,
		Created:        prs.core.Created,
		Modified:       prs.core.Modified,
		LastModifiedBy: prs.core.LastModifiedBy,
	}

	for _, slide := range prs.Slides {
		for _, sh := range slide.Shapes {
			md.TotalShapes++
			if sh.Kind == KindPicture {
				md.TotalImages++
			}
			if sh.Table != nil {
				md.TotalTables++
			}
		}
		if strings.TrimSpace(slide.Notes) != "" {
			md.SlidesWithNotes++
		}
	}

	return md, nil
}
