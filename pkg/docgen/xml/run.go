package xml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	Properties *RunProperties
	// Content keeps text, breaks and preserved elements in document order
	Content []RunContent
}

// isParagraphContent implements the ParagraphContent interface
func (r *Run) isParagraphContent() {}

// UnmarshalXML implements custom XML unmarshaling to preserve unknown elements
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return r.decode(d, start, newNamespaces(start))
}

func (r *Run) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
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
			switch t.Name.Local {
			case "rPr":
				props, err := decodeRunProperties(d, t, ns)
				if err != nil {
					return err
				}
				r.Properties = props
			case "t":
				text := &Text{}
				if err := text.decode(d, t); err != nil {
					return err
				}
				r.Content = append(r.Content, text)
			case "br":
				br := &Break{Type: attrValue(t.Attr, "type")}
				if err := d.Skip(); err != nil {
					return err
				}
				r.Content = append(r.Content, br)
			default:
				raw, err := captureRaw(d, t, ns)
				if err != nil {
					return err
				}
				r.Content = append(r.Content, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Run to ensure proper namespacing
func (r *Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: "w:r"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.Encode(r.Properties); err != nil {
			return err
		}
	}

	if err := encodeAll(e, r.Content); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of a run
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		if t, ok := c.(*Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}

// TextNodes returns the run's text elements in order
func (r *Run) TextNodes() []*Text {
	var nodes []*Text
	for _, c := range r.Content {
		if t, ok := c.(*Text); ok {
			nodes = append(nodes, t)
		}
	}
	return nodes
}

// TextOnly reports whether the run holds nothing but text
func (r *Run) TextOnly() bool {
	for _, c := range r.Content {
		if _, ok := c.(*Text); !ok {
			return false
		}
	}
	return true
}

// NewRun creates a run holding a single text element
func NewRun(text string) *Run {
	return &Run{Content: []RunContent{NewText(text)}}
}

// RunProperties represents run formatting properties. A parsed rPr is kept
// verbatim in Raw and the typed fields are read from it; Raw takes
// precedence when marshaling.
type RunProperties struct {
	Style  string
	Bold   bool
	Italic bool
	// Size in half-points
	Size int
	Raw  *RawXMLElement
}

func decodeRunProperties(d *xml.Decoder, start xml.StartElement, ns namespaces) (*RunProperties, error) {
	raw, err := captureRaw(d, start, ns)
	if err != nil {
		return nil, err
	}
	props := &RunProperties{Raw: raw}
	props.Style, _ = raw.childAttr("rStyle", "val")
	props.Bold = onOff(raw.childAttr("b", "val"))
	props.Italic = onOff(raw.childAttr("i", "val"))
	if sz, ok := raw.childAttr("sz", "val"); ok {
		props.Size, _ = strconv.Atoi(sz)
	}
	return props, nil
}

// MarshalXML writes the preserved rPr or the typed properties
func (p *RunProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if p.Raw != nil {
		return p.Raw.MarshalXML(e, xml.StartElement{})
	}

	start := xml.StartElement{Name: xml.Name{Local: "w:rPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p.Style != "" {
		if err := e.EncodeElement(Style{Val: p.Style}, xml.StartElement{Name: xml.Name{Local: "w:rStyle"}}); err != nil {
			return err
		}
	}
	if p.Bold {
		if err := encodeEmpty(e, "w:b"); err != nil {
			return err
		}
	}
	if p.Italic {
		if err := encodeEmpty(e, "w:i"); err != nil {
			return err
		}
	}
	if p.Size > 0 {
		val := strconv.Itoa(p.Size)
		for _, name := range []string{"w:sz", "w:szCs"} {
			if err := e.EncodeElement(Style{Val: val}, xml.StartElement{Name: xml.Name{Local: name}}); err != nil {
				return err
			}
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Text represents text content
type Text struct {
	// Space is "preserve" when leading or trailing whitespace is significant
	Space string
	Value string
}

func (t *Text) isRunContent() {}

// NewText creates a text element, preserving whitespace when needed
func NewText(value string) *Text {
	t := &Text{Value: value}
	t.normalizeSpace()
	return t
}

// Set replaces the text value
func (t *Text) Set(value string) {
	t.Value = value
	t.normalizeSpace()
}

func (t *Text) normalizeSpace() {
	if t.Value != strings.TrimSpace(t.Value) {
		t.Space = "preserve"
	}
}

func (t *Text) decode(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		if a.Name.Space == namespaceXML && a.Name.Local == "space" {
			t.Space = a.Value
		}
	}
	var sb strings.Builder
	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}
		switch tt := token.(type) {
		case xml.CharData:
			sb.Write(tt)
		case xml.StartElement:
			if err := d.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			t.Value = sb.String()
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Text to ensure proper namespacing
func (t *Text) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:t"}}
	if t.Space != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "xml:space"}, Value: t.Space})
	}
	return e.EncodeElement(t.Value, start)
}

// Break represents a line break
type Break struct {
	Type string
}

func (b *Break) isRunContent() {}

// MarshalXML implements xml.Marshaler to ensure Break is self-closing
func (b *Break) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:br"}}
	if b.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:type"}, Value: b.Type})
	}
	return e.EncodeElement(struct{}{}, start)
}

func encodeEmpty(e *xml.Encoder, name string) error {
	return e.EncodeElement(struct{}{}, xml.StartElement{Name: xml.Name{Local: name}})
}
