package xml

import (
	"encoding/xml"
	"strconv"
)

// EMUsPerPixel converts 96 dpi pixels to English Metric Units
const EMUsPerPixel = 9525

// element is a small builder for preserved token streams
type element struct {
	name     string
	attrs    []xml.Attr
	children []*element
}

func el(name string, attrs ...string) *element {
	e := &element{name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.attrs = append(e.attrs, xml.Attr{Name: xml.Name{Local: attrs[i]}, Value: attrs[i+1]})
	}
	return e
}

func (e *element) add(children ...*element) *element {
	e.children = append(e.children, children...)
	return e
}

func (e *element) tokens(out []xml.Token) []xml.Token {
	out = append(out, xml.StartElement{Name: xml.Name{Local: e.name}, Attr: e.attrs})
	for _, c := range e.children {
		out = c.tokens(out)
	}
	return append(out, xml.EndElement{Name: xml.Name{Local: e.name}})
}

func (e *element) raw() *RawXMLElement {
	return &RawXMLElement{XMLName: xml.Name{Local: e.name}, Tokens: e.tokens(nil)}
}

// NewInlineImage creates a run holding an inline picture that references
// the image relationship relID. id must be unique within the document.
// Width and height are in pixels.
func NewInlineImage(relID string, id int, name string, width, height int) *Run {
	cx := strconv.FormatInt(int64(width)*EMUsPerPixel, 10)
	cy := strconv.FormatInt(int64(height)*EMUsPerPixel, 10)
	sid := strconv.Itoa(id)

	pic := el("pic:pic", "xmlns:pic", NamespacePicture).add(
		el("pic:nvPicPr").add(
			el("pic:cNvPr", "id", "0", "name", name),
			el("pic:cNvPicPr"),
		),
		el("pic:blipFill").add(
			el("a:blip", "r:embed", relID),
			el("a:stretch").add(el("a:fillRect")),
		),
		el("pic:spPr").add(
			el("a:xfrm").add(
				el("a:off", "x", "0", "y", "0"),
				el("a:ext", "cx", cx, "cy", cy),
			),
			el("a:prstGeom", "prst", "rect").add(el("a:avLst")),
		),
	)

	drawing := el("w:drawing").add(
		el("wp:inline", "distT", "0", "distB", "0", "distL", "0", "distR", "0").add(
			el("wp:extent", "cx", cx, "cy", cy),
			el("wp:docPr", "id", sid, "name", "Picture "+sid),
			el("wp:cNvGraphicFramePr").add(
				el("a:graphicFrameLocks", "xmlns:a", NamespaceDrawingMain, "noChangeAspect", "1"),
			),
			el("a:graphic", "xmlns:a", NamespaceDrawingMain).add(
				el("a:graphicData", "uri", NamespacePicture).add(pic),
			),
		),
	)

	return &Run{Content: []RunContent{drawing.raw()}}
}

// NewSectionProperties creates the final section properties of a body.
// Sizes and margins are in twips.
func NewSectionProperties(pageWidth, pageHeight, top, right, bottom, left int) *RawXMLElement {
	return el("w:sectPr").add(
		el("w:pgSz", "w:w", itoa(pageWidth), "w:h", itoa(pageHeight)),
		el("w:pgMar",
			"w:top", itoa(top), "w:right", itoa(right), "w:bottom", itoa(bottom), "w:left", itoa(left),
			"w:header", "720", "w:footer", "720", "w:gutter", "0"),
	).raw()
}

// HasDrawing reports whether the paragraph holds an inline or anchored
// drawing
func (p *Paragraph) HasDrawing() bool {
	for _, c := range p.Content {
		run, ok := c.(*Run)
		if !ok {
			continue
		}
		for _, rc := range run.Content {
			if raw, ok := rc.(*RawXMLElement); ok && localPart(raw.Name()) == "drawing" {
				return true
			}
		}
	}
	return false
}
