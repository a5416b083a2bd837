package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Header is the prolog written in front of every part
const Header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n"

// Document represents a Word document structure
type Document struct {
	// Attrs preserves the root element attributes, namespace declarations included
	Attrs []xml.Attr
	Body  *Body
}

// NewDocument creates an empty document declaring the namespaces the
// builders emit.
func NewDocument() *Document {
	doc := &Document{Body: &Body{}}
	doc.EnsureNamespace("w", NamespaceMain)
	doc.EnsureNamespace("r", NamespaceRelationships)
	doc.EnsureNamespace("wp", NamespaceDrawing)
	return doc
}

// UnmarshalXML implements custom XML unmarshaling to preserve root attributes
func (doc *Document) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	ns := newNamespaces(start)
	doc.Attrs = ns.qualifyStart(start).Attr

	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "body" {
				body := &Body{}
				if err := body.decode(d, t, ns.child(t.Attr)); err != nil {
					return err
				}
				doc.Body = body
				continue
			}
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			if doc.Body == nil {
				doc.Body = &Body{}
			}
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling with the w: prefix and the
// preserved root attributes
func (doc *Document) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:document"}, Attr: doc.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	body := doc.Body
	if body == nil {
		body = &Body{}
	}
	if err := e.Encode(body); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// EnsureNamespace declares prefix on the root element unless it is
// already declared.
func (doc *Document) EnsureNamespace(prefix, uri string) {
	doc.Attrs = ensureNamespace(doc.Attrs, prefix, uri)
}

func ensureNamespace(attrs []xml.Attr, prefix, uri string) []xml.Attr {
	name := "xmlns:" + prefix
	for _, a := range attrs {
		if a.Name.Local == name {
			return attrs
		}
	}
	return append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: uri})
}

// Body represents the document body
type Body struct {
	// Elements maintains the order of all body elements
	Elements []BodyElement
	// SectionProperties at the end of the body (critical for Word compatibility)
	SectionProperties *RawXMLElement
}

func (b *Body) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "sectPr" {
				raw, err := captureRaw(d, t, ns)
				if err != nil {
					return err
				}
				b.SectionProperties = raw
				continue
			}
			el, err := decodeBodyElement(d, t, ns)
			if err != nil {
				return err
			}
			b.Elements = append(b.Elements, el)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling to preserve element order
func (b *Body) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:body"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, b.Elements); err != nil {
		return err
	}
	if b.SectionProperties != nil {
		if err := e.Encode(b.SectionProperties); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Add appends elements to the body
func (b *Body) Add(elems ...BodyElement) {
	b.Elements = append(b.Elements, elems...)
}

// decodeBodyElement decodes a block-level element: a paragraph, a table, a
// content control or custom XML wrapper, or anything else preserved verbatim.
func decodeBodyElement(d *xml.Decoder, t xml.StartElement, ns namespaces) (BodyElement, error) {
	if blockWrappers[t.Name.Local] {
		return decodeBlockWrapper(d, t, ns)
	}
	switch t.Name.Local {
	case "p":
		para := &Paragraph{}
		if err := para.decode(d, t, ns.child(t.Attr)); err != nil {
			return nil, err
		}
		return para, nil
	case "tbl":
		table := &Table{}
		if err := table.decode(d, t, ns.child(t.Attr)); err != nil {
			return nil, err
		}
		return table, nil
	}
	return captureRaw(d, t, ns)
}

// HeaderFooter represents a header or footer part (w:hdr / w:ftr)
type HeaderFooter struct {
	// Kind is the root element local name, "hdr" or "ftr"
	Kind     string
	Attrs    []xml.Attr
	Elements []BodyElement
}

// UnmarshalXML implements custom XML unmarshaling for header and footer parts
func (h *HeaderFooter) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	ns := newNamespaces(start)
	h.Kind = start.Name.Local
	h.Attrs = ns.qualifyStart(start).Attr

	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			el, err := decodeBodyElement(d, t, ns)
			if err != nil {
				return err
			}
			h.Elements = append(h.Elements, el)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for header and footer parts
func (h *HeaderFooter) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:" + h.Kind}, Attr: ensureNamespace(h.Attrs, "w", NamespaceMain)}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, h.Elements); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// ParseDocument parses a Word document XML
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	return &doc, nil
}

// ParseHeaderFooter parses a header or footer part
func ParseHeaderFooter(r io.Reader) (*HeaderFooter, error) {
	decoder := xml.NewDecoder(r)

	var part HeaderFooter
	if err := decoder.Decode(&part); err != nil {
		return nil, fmt.Errorf("failed to parse header/footer: %w", err)
	}
	if part.Kind != "hdr" && part.Kind != "ftr" {
		return nil, fmt.Errorf("failed to parse header/footer: unexpected root element %q", part.Kind)
	}

	return &part, nil
}

// MarshalDocument serializes a document, prolog included
func MarshalDocument(doc *Document) ([]byte, error) {
	doc.EnsureNamespace("w", NamespaceMain)
	return marshalPart(doc)
}

// MarshalHeaderFooter serializes a header or footer part, prolog included
func MarshalHeaderFooter(part *HeaderFooter) ([]byte, error) {
	return marshalPart(part)
}

func marshalPart(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to marshal part: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("failed to marshal part: %w", err)
	}
	return buf.Bytes(), nil
}

// Paragraphs returns every paragraph in elems in document order, descending
// into table rows, cells, nested tables and block content controls.
func Paragraphs(elems []BodyElement) []*Paragraph {
	var out []*Paragraph
	walk(elems, func(p *Paragraph) { out = append(out, p) })
	return out
}

// Tables returns the top-level tables of elems in order
func Tables(elems []BodyElement) []*Table {
	var out []*Table
	for _, el := range elems {
		if t, ok := el.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

func walk(elems []BodyElement, fn func(*Paragraph)) {
	for _, el := range elems {
		switch e := el.(type) {
		case *Paragraph:
			fn(e)
		case *BlockWrapper:
			walk(e.Elements, fn)
		case *Table:
			for _, row := range e.Rows() {
				for _, cell := range row.Cells() {
					walk(cell.Content, fn)
				}
			}
		}
	}
}
