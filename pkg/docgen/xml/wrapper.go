package xml

import (
	"encoding/xml"
	"io"
)

// inlineWrappers are paragraph-level elements whose runs are ordinary
// paragraph text: tracked insertions, inline content controls, smart tags,
// custom XML markup and simple fields.
var inlineWrappers = map[string]bool{
	"ins":        true,
	"sdt":        true,
	"sdtContent": true,
	"smartTag":   true,
	"customXml":  true,
	"fldSimple":  true,
}

// blockWrappers are body-level elements holding paragraphs and tables:
// block content controls and custom XML markup.
var blockWrappers = map[string]bool{
	"sdt":        true,
	"sdtContent": true,
	"customXml":  true,
}

// InlineWrapper is a paragraph-level element that wraps runs, such as w:ins
// or an inline w:sdt. Runs, hyperlinks and nested wrappers are modeled;
// anything else inside it (w:sdtPr, w:smartTagPr, ...) is preserved.
type InlineWrapper struct {
	// Start is the prefixed start tag, attributes included
	Start   xml.StartElement
	Content []ParagraphContent
}

func (w *InlineWrapper) isParagraphContent() {}

// Name returns the local name of the wrapper, "ins", "sdt", ...
func (w *InlineWrapper) Name() string {
	return localPart(w.Start.Name.Local)
}

// MarshalXML writes the wrapper with its content
func (w *InlineWrapper) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if err := e.EncodeToken(w.Start); err != nil {
		return err
	}
	if err := encodeAll(e, w.Content); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: w.Start.Name})
}

// BlockWrapper is a body-level element that wraps paragraphs and tables,
// such as a block w:sdt. Row- and cell-level content controls inside tables
// are not modeled and stay RawXMLElement.
type BlockWrapper struct {
	Start    xml.StartElement
	Elements []BodyElement
}

func (w *BlockWrapper) isBodyElement() {}

// Name returns the local name of the wrapper
func (w *BlockWrapper) Name() string {
	return localPart(w.Start.Name.Local)
}

// MarshalXML writes the wrapper with its content
func (w *BlockWrapper) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if err := e.EncodeToken(w.Start); err != nil {
		return err
	}
	if err := encodeAll(e, w.Elements); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: w.Start.Name})
}

// decodeInlineContent reads the children of a paragraph-level container up
// to its end tag
func decodeInlineContent(d *xml.Decoder, ns namespaces) ([]ParagraphContent, error) {
	var content []ParagraphContent
	for {
		token, err := d.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			el, err := decodeInlineElement(d, t, ns)
			if err != nil {
				return nil, err
			}
			content = append(content, el)
		case xml.EndElement:
			return content, nil
		}
	}
}

// decodeInlineElement decodes a run, a hyperlink, a wrapper, or anything
// else preserved verbatim
func decodeInlineElement(d *xml.Decoder, t xml.StartElement, ns namespaces) (ParagraphContent, error) {
	scope := ns.child(t.Attr)
	switch {
	case t.Name.Local == "r":
		run := &Run{}
		if err := run.decode(d, t, scope); err != nil {
			return nil, err
		}
		return run, nil
	case t.Name.Local == "hyperlink":
		link := &Hyperlink{Attrs: scope.qualifyStart(t).Attr}
		if err := link.decode(d, t, scope); err != nil {
			return nil, err
		}
		return link, nil
	case inlineWrappers[t.Name.Local]:
		content, err := decodeInlineContent(d, scope)
		if err != nil {
			return nil, err
		}
		return &InlineWrapper{Start: scope.qualifyStart(t), Content: content}, nil
	}
	return captureRaw(d, t, ns)
}

func decodeBlockWrapper(d *xml.Decoder, t xml.StartElement, ns namespaces) (*BlockWrapper, error) {
	scope := ns.child(t.Attr)
	w := &BlockWrapper{Start: scope.qualifyStart(t)}
	for {
		token, err := d.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}

		switch tt := token.(type) {
		case xml.StartElement:
			el, err := decodeBodyElement(d, tt, scope)
			if err != nil {
				return nil, err
			}
			w.Elements = append(w.Elements, el)
		case xml.EndElement:
			return w, nil
		}
	}
}

// textNodes collects the text elements of content in reading order,
// descending into hyperlinks and wrappers
func textNodes(content []ParagraphContent) []*Text {
	var nodes []*Text
	for _, c := range content {
		switch c := c.(type) {
		case *Run:
			nodes = append(nodes, c.TextNodes()...)
		case *Hyperlink:
			nodes = append(nodes, textNodes(c.Content)...)
		case *InlineWrapper:
			nodes = append(nodes, textNodes(c.Content)...)
		}
	}
	return nodes
}
