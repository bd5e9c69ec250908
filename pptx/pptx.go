// CLAUDE:SUMMARY Presentation container reader — zip part loading, slide ordering, rels resolution, content types, core properties.
// Package pptx extracts textual content from PowerPoint (.pptx) files and
// optionally augments slide images with text recognized via a vision-capable
// language model.
//
// The container is read with archive/zip and encoding/xml only: slide parts
// (ppt/slides/slideN.xml) are walked token by token so shape traversal order
// matches document order, relationships resolve notes and image payloads,
// and [Content_Types].xml supplies image format tags.
//
// Usage:
//
//	ex := pptx.New(pptx.Config{})
//	text, err := ex.ExtractText(ctx, "deck.pptx", pptx.DefaultOptions())
//	res := ex.ProcessWithOCR(ctx, "deck.pptx", false)
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrNotFound is returned when the given path does not resolve to a regular
// file.
var ErrNotFound = errors.New("pptx: file not found")

// Presentation is an opened .pptx container.
type Presentation struct {
	path   string
	parts  map[string][]byte
	types  contentTypes
	core   corePropsXML
	Slides []*Slide
}

// Slide is one page of the presentation. Shapes are in document order and
// Notes is the trimmed presenter-notes text ("" when absent).
type Slide struct {
	Number int
	Shapes []*Shape
	Notes  string

	rels map[string]relEntry
	pres *Presentation
}

type relEntry struct {
	relType string
	target  string // resolved part name, e.g. ppt/media/image1.png
}

var slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Open reads a .pptx file. It fails when the file is not a valid
// presentation container.
func Open(filePath string) (*Presentation, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer zr.Close()

	parts := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		parts[f.Name] = data
	}

	if _, ok := parts["ppt/presentation.xml"]; !ok {
		return nil, fmt.Errorf("ppt/presentation.xml not found: not a presentation container")
	}

	p := &Presentation{
		path:  filePath,
		parts: parts,
		types: parseContentTypes(parts["[Content_Types].xml"]),
	}
	if core, ok := parts["docProps/core.xml"]; ok {
		// Metadata absence is not fatal.
		xmlUnmarshal(core, &p.core)
	}

	if err := p.loadSlides(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadSlides parses slide parts in ascending numeric order, resolving
// relationships and presenter notes per slide.
func (p *Presentation) loadSlides() error {
	type numbered struct {
		n    int
		name string
	}
	var found []numbered
	for name := range p.parts {
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			found = append(found, numbered{n: n, name: name})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	for i, f := range found {
		shapes, err := parseSlideShapes(p.parts[f.name])
		if err != nil {
			return fmt.Errorf("parse %s: %w", f.name, err)
		}
		slide := &Slide{
			Number: i + 1,
			Shapes: shapes,
			rels:   p.parseRels(f.name),
			pres:   p,
		}
		slide.Notes = p.notesText(slide)
		p.Slides = append(p.Slides, slide)
	}
	return nil
}

// parseRels reads the relationships part of a slide and resolves targets to
// part names.
func (p *Presentation) parseRels(slidePart string) map[string]relEntry {
	relPart := path.Join(path.Dir(slidePart), "_rels", path.Base(slidePart)+".rels")
	data, ok := p.parts[relPart]
	if !ok {
		return nil
	}

	var rx struct {
		Rels []struct {
			ID     string `xml:"Id,attr"`
			Type   string `xml:"Type,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xmlUnmarshal(data, &rx); err != nil {
		return nil
	}

	rels := make(map[string]relEntry, len(rx.Rels))
	for _, r := range rx.Rels {
		target := r.Target
		if strings.HasPrefix(target, "/") {
			target = strings.TrimPrefix(target, "/")
		} else {
			target = path.Clean(path.Join(path.Dir(slidePart), target))
		}
		rels[r.ID] = relEntry{relType: r.Type, target: target}
	}
	return rels
}

// notesText locates the slide's notes part via its relationships and returns
// the trimmed text of the notes body placeholder.
func (p *Presentation) notesText(s *Slide) string {
	var notesPart string
	for _, rel := range s.rels {
		if strings.HasSuffix(rel.relType, "/notesSlide") {
			notesPart = rel.target
			break
		}
	}
	if notesPart == "" {
		return ""
	}
	data, ok := p.parts[notesPart]
	if !ok {
		return ""
	}
	shapes, err := parseSlideShapes(data)
	if err != nil {
		return ""
	}
	for _, sh := range shapes {
		if sh.IsPlaceholder && sh.PlaceholderType == "body" && sh.HasTextFrame {
			return sh.frameText()
		}
	}
	return ""
}

// imagePayload resolves a picture relationship to its raw bytes and declared
// content type.
func (s *Slide) imagePayload(relID string) (data []byte, contentType string, ok bool) {
	rel, ok := s.rels[relID]
	if !ok {
		return nil, "", false
	}
	data, ok = s.pres.parts[rel.target]
	if !ok {
		return nil, "", false
	}
	return data, s.pres.types.forPart(rel.target), true
}

// --- content types ---

type contentTypes struct {
	defaults  map[string]string // lowercase extension -> content type
	overrides map[string]string // "/part/name" -> content type
}

func parseContentTypes(data []byte) contentTypes {
	ct := contentTypes{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	if len(data) == 0 {
		return ct
	}

	var tx struct {
		Defaults []struct {
			Extension   string `xml:"Extension,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Default"`
		Overrides []struct {
			PartName    string `xml:"PartName,attr"`
			ContentType string `xml:"ContentType,attr"`
		} `xml:"Override"`
	}
	if err := xmlUnmarshal(data, &tx); err != nil {
		return ct
	}
	for _, d := range tx.Defaults {
		ct.defaults[strings.ToLower(d.Extension)] = d.ContentType
	}
	for _, o := range tx.Overrides {
		ct.overrides[o.PartName] = o.ContentType
	}
	return ct
}

func (ct contentTypes) forPart(part string) string {
	if t, ok := ct.overrides["/"+part]; ok {
		return t
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(part), "."))
	return ct.defaults[ext]
}

// --- core properties ---

type corePropsXML struct {
	Title          string `xml:"title"`
	Creator        string `xml:"creator"`
	Subject        string `xml:"subject"`
	Keywords       string `xml:"keywords"`
	Created        string `xml:"created"`
	Modified       string `xml:"modified"`
	LastModifiedBy string `xml:"lastModifiedBy"`
}

// xmlUnmarshal decodes with a charset-tolerant reader, since office tooling
// occasionally writes non-UTF-8 encodings.
func xmlUnmarshal(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}
