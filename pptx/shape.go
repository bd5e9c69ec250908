// CLAUDE:SUMMARY Shape tree model and order-preserving XML parsing of slide spTree (sp, pic, graphicFrame, grpSp).
package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ShapeKind classifies a visual element on a slide.
type ShapeKind int

const (
	KindShape ShapeKind = iota // text box or placeholder
	KindPicture
	KindGraphicFrame // table, chart or other embedded graphic
	KindGroup
	KindConnector
)

// Shape is one node of a slide's shape tree. Document order is preserved:
// the traversal order of Shapes on a Slide is the order in the slide part.
type Shape struct {
	Kind            ShapeKind
	IsPlaceholder   bool
	PlaceholderType string // ph type attribute: title, ctrTitle, subTitle, body, ...
	HasTextFrame    bool
	Paragraphs      []Paragraph
	Table           *Table
	Children        []*Shape // populated for groups
	ImageRel        string   // relationship id of the picture payload
}

// Paragraph holds the run texts of one a:p element, in run order.
type Paragraph struct {
	Runs []string
}

// Text concatenates the paragraph's runs without separator.
func (p Paragraph) Text() string {
	return strings.Join(p.Runs, "")
}

// Table is the cell grid of a table graphic frame.
type Table struct {
	Rows [][]TableCell
}

// TableCell carries the cell's own paragraphs.
type TableCell struct {
	Paragraphs []Paragraph
}

// frameText joins the trimmed paragraph texts of a text frame with newlines,
// keeping empty paragraphs, then trims the result. This mirrors how slide
// titles read their placeholder text.
func (s *Shape) frameText() string {
	if !s.HasTextFrame {
		return ""
	}
	parts := make([]string, 0, len(s.Paragraphs))
	for _, p := range s.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// --- XML decoding ---
//
// Order across different element kinds matters (image discovery order, shape
// traversal order), so the shape tree is walked token by token instead of
// unmarshalled into per-kind slices.

type txBodyXML struct {
	Paragraphs []paraXML `xml:"p"`
}

type paraXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text string `xml:"t"`
}

type spXML struct {
	NvSpPr struct {
		NvPr struct {
			Ph *struct {
				Type string `xml:"type,attr"`
			} `xml:"ph"`
		} `xml:"nvPr"`
	} `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type picXML struct {
	BlipFill struct {
		Blip struct {
			Embed string `xml:"embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}

type graphicFrameXML struct {
	Graphic struct {
		GraphicData struct {
			Tbl *tblXML `xml:"tbl"`
		} `xml:"graphicData"`
	} `xml:"graphic"`
}

type tblXML struct {
	Rows []trXML `xml:"tr"`
}

type trXML struct {
	Cells []tcXML `xml:"tc"`
}

type tcXML struct {
	TxBody txBodyXML `xml:"txBody"`
}

// parseSlideShapes decodes a slide (or notes slide) part and returns its
// top-level shapes in document order.
func parseSlideShapes(data []byte) ([]*Shape, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("scan slide xml: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok && start.Name.Local == "spTree" {
			return parseShapeList(dec, "spTree")
		}
	}
}

// parseShapeList consumes children of a container element (spTree or grpSp)
// until the matching end element, decoding known shape kinds and skipping
// everything else.
func parseShapeList(dec *xml.Decoder, container string) ([]*Shape, error) {
	var shapes []*Shape
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return shapes, nil
		}
		if err != nil {
			return shapes, fmt.Errorf("scan %s children: %w", container, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				var sx spXML
				if err := dec.DecodeElement(&sx, &t); err != nil {
					return shapes, fmt.Errorf("decode sp: %w", err)
				}
				shapes = append(shapes, newTextShape(sx))

			case "pic":
				var px picXML
				if err := dec.DecodeElement(&px, &t); err != nil {
					return shapes, fmt.Errorf("decode pic: %w", err)
				}
				shapes = append(shapes, &Shape{
					Kind:     KindPicture,
					ImageRel: px.BlipFill.Blip.Embed,
				})

			case "graphicFrame":
				var gx graphicFrameXML
				if err := dec.DecodeElement(&gx, &t); err != nil {
					return shapes, fmt.Errorf("decode graphicFrame: %w", err)
				}
				sh := &Shape{Kind: KindGraphicFrame}
				if gx.Graphic.GraphicData.Tbl != nil {
					sh.Table = newTable(gx.Graphic.GraphicData.Tbl)
				}
				shapes = append(shapes, sh)

			case "grpSp":
				children, err := parseShapeList(dec, "grpSp")
				if err != nil {
					return shapes, err
				}
				shapes = append(shapes, &Shape{Kind: KindGroup, Children: children})

			case "cxnSp":
				if err := dec.Skip(); err != nil {
					return shapes, fmt.Errorf("skip cxnSp: %w", err)
				}
				shapes = append(shapes, &Shape{Kind: KindConnector})

			default:
				// Group properties, transforms, etc.
				if err := dec.Skip(); err != nil {
					return shapes, fmt.Errorf("skip %s: %w", t.Name.Local, err)
				}
			}

		case xml.EndElement:
			if t.Name.Local == container {
				return shapes, nil
			}
		}
	}
}

func newTextShape(sx spXML) *Shape {
	sh := &Shape{Kind: KindShape}
	if ph := sx.NvSpPr.NvPr.Ph; ph != nil {
		sh.IsPlaceholder = true
		sh.PlaceholderType = ph.Type
	}
	if sx.TxBody != nil {
		sh.HasTextFrame = true
		sh.Paragraphs = newParagraphs(sx.TxBody.Paragraphs)
	}
	return sh
}

func newParagraphs(px []paraXML) []Paragraph {
	out := make([]Paragraph, 0, len(px))
	for _, p := range px {
		runs := make([]string, 0, len(p.Runs))
		for _, r := range p.Runs {
			runs = append(runs, r.Text)
		}
		out = append(out, Paragraph{Runs: runs})
	}
	return out
}

func newTable(tx *tblXML) *Table {
	t := &Table{}
	for _, row := range tx.Rows {
		cells := make([]TableCell, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, TableCell{Paragraphs: newParagraphs(c.TxBody.Paragraphs)})
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// titlePlaceholderTypes are the three placeholder roles recognized as slide
// titles.
var titlePlaceholderTypes = map[string]bool{
	"title":    true,
	"ctrTitle": true,
	"subTitle": true,
}

func isTitlePlaceholder(phType string) bool {
	return titlePlaceholderTypes[phType]
}
