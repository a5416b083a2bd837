package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Properties *ParagraphProperties
	// Content maintains the order of runs, hyperlinks and preserved elements
	Content []ParagraphContent
}

// isBodyElement implements the BodyElement interface
func (p *Paragraph) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling to preserve element order
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return p.decode(d, start, newNamespaces(start))
}

func (p *Paragraph) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
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
			if t.Name.Local == "pPr" {
				props, err := decodeParagraphProperties(d, t, ns)
				if err != nil {
					return err
				}
				p.Properties = props
				continue
			}
			el, err := decodeInlineElement(d, t, ns)
			if err != nil {
				return err
			}
			p.Content = append(p.Content, el)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Paragraph to ensure proper namespacing
func (p *Paragraph) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:p"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := e.Encode(p.Properties); err != nil {
			return err
		}
	}

	if err := encodeAll(e, p.Content); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, t := range p.TextNodes() {
		sb.WriteString(t.Value)
	}
	return sb.String()
}

// TextNodes returns every text element of the paragraph in reading order,
// including those inside hyperlinks, tracked insertions and content controls.
func (p *Paragraph) TextNodes() []*Text {
	return textNodes(p.Content)
}

// StyleID returns the paragraph style, or "" for the default style
func (p *Paragraph) StyleID() string {
	if p.Properties == nil {
		return ""
	}
	return p.Properties.Style
}

// AddRun appends a run and returns it
func (p *Paragraph) AddRun(run *Run) *Run {
	p.Content = append(p.Content, run)
	return run
}

// NewParagraph creates a paragraph with the given style and a single run.
// An empty text yields an empty paragraph.
func NewParagraph(style, text string) *Paragraph {
	p := &Paragraph{}
	if style != "" {
		p.Properties = &ParagraphProperties{Style: style}
	}
	if text != "" {
		p.AddRun(NewRun(text))
	}
	return p
}

// ParagraphProperties represents paragraph formatting properties. As with
// runs, a parsed pPr is preserved in Raw.
type ParagraphProperties struct {
	Style     string
	KeepNext  bool
	Spacing   *Spacing
	Alignment string
	Raw       *RawXMLElement
}

// Spacing represents paragraph spacing in twentieths of a point
type Spacing struct {
	Before int
	After  int
	Line   int
}

func decodeParagraphProperties(d *xml.Decoder, start xml.StartElement, ns namespaces) (*ParagraphProperties, error) {
	raw, err := captureRaw(d, start, ns)
	if err != nil {
		return nil, err
	}
	props := &ParagraphProperties{Raw: raw}
	props.Style, _ = raw.childAttr("pStyle", "val")
	props.Alignment, _ = raw.childAttr("jc", "val")
	props.KeepNext = onOff(raw.childAttr("keepNext", "val"))
	return props, nil
}

// MarshalXML writes the preserved pPr or the typed properties in schema order
func (p *ParagraphProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if p.Raw != nil {
		return p.Raw.MarshalXML(e, xml.StartElement{})
	}

	start := xml.StartElement{Name: xml.Name{Local: "w:pPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p.Style != "" {
		if err := e.EncodeElement(Style{Val: p.Style}, xml.StartElement{Name: xml.Name{Local: "w:pStyle"}}); err != nil {
			return err
		}
	}
	if p.KeepNext {
		if err := encodeEmpty(e, "w:keepNext"); err != nil {
			return err
		}
	}
	if p.Spacing != nil {
		if err := e.Encode(p.Spacing); err != nil {
			return err
		}
	}
	if p.Alignment != "" {
		if err := e.EncodeElement(Style{Val: p.Alignment}, xml.StartElement{Name: xml.Name{Local: "w:jc"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// MarshalXML implements custom XML marshaling for Spacing
func (s *Spacing) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:spacing"}}
	start.Attr = append(start.Attr,
		xml.Attr{Name: xml.Name{Local: "w:before"}, Value: itoa(s.Before)},
		xml.Attr{Name: xml.Name{Local: "w:after"}, Value: itoa(s.After)},
	)
	if s.Line > 0 {
		start.Attr = append(start.Attr,
			xml.Attr{Name: xml.Name{Local: "w:line"}, Value: itoa(s.Line)},
			xml.Attr{Name: xml.Name{Local: "w:lineRule"}, Value: "auto"},
		)
	}
	return e.EncodeElement(struct{}{}, start)
}

// Hyperlink represents a hyperlink in the document
type Hyperlink struct {
	// Attrs are the prefixed attributes of the element (r:id, w:anchor, ...)
	Attrs []xml.Attr
	// Content holds runs and preserved elements in order
	Content []ParagraphContent
}

// isParagraphContent implements the ParagraphContent interface
func (h *Hyperlink) isParagraphContent() {}

func (h *Hyperlink) decode(d *xml.Decoder, _ xml.StartElement, ns namespaces) error {
	content, err := decodeInlineContent(d, ns)
	if err != nil {
		return err
	}
	h.Content = content
	return nil
}

// MarshalXML implements custom XML marshaling for Hyperlink to ensure proper namespacing
func (h *Hyperlink) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:hyperlink"}, Attr: h.Attrs}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, h.Content); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Runs returns the runs of the hyperlink in order
func (h *Hyperlink) Runs() []*Run {
	var runs []*Run
	for _, c := range h.Content {
		if run, ok := c.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs in a hyperlink
func (h *Hyperlink) GetText() string {
	var sb strings.Builder
	for _, run := range h.Runs() {
		sb.WriteString(run.GetText())
	}
	return sb.String()
}
