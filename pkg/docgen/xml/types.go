package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Namespace URIs used when building documents from scratch.
const (
	NamespaceMain          = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NamespaceRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NamespaceDrawingMain   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespacePicture       = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	namespaceXML           = "http://www.w3.org/XML/1998/namespace"
)

// BodyElement represents any element that can appear in a document body or a table cell
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent represents any content that can appear in a run
type RunContent interface {
	isRunContent()
}

// RowElement represents any content that can appear in a table row
type RowElement interface {
	isRowElement()
}

// TableElement represents any content that can appear directly in a table
type TableElement interface {
	isTableElement()
}

// RawXMLElement represents an element we preserve but don't model.
// Tokens holds the complete element, start to end, with prefixed names.
type RawXMLElement struct {
	XMLName xml.Name
	Tokens  []xml.Token
}

func (r *RawXMLElement) isBodyElement()      {}
func (r *RawXMLElement) isParagraphContent() {}
func (r *RawXMLElement) isRunContent()       {}
func (r *RawXMLElement) isRowElement()       {}
func (r *RawXMLElement) isTableElement()     {}

// MarshalXML re-emits the captured token stream
func (r *RawXMLElement) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	for _, tok := range r.Tokens {
		if err := e.EncodeToken(tok); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the prefixed element name, e.g. "w:bookmarkStart"
func (r *RawXMLElement) Name() string {
	return r.XMLName.Local
}

// Text returns the character data inside the element
func (r *RawXMLElement) Text() string {
	var sb strings.Builder
	for _, tok := range r.Tokens {
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
		}
	}
	return sb.String()
}

// childAttr returns the value of attr on the first direct child named child.
// Both names are compared without their prefix. The boolean reports
// whether the child exists.
func (r *RawXMLElement) childAttr(child, attr string) (string, bool) {
	depth := 0
	for _, tok := range r.Tokens {
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 && localPart(t.Name.Local) == child {
				for _, a := range t.Attr {
					if localPart(a.Name.Local) == attr {
						return a.Value, true
					}
				}
				return "", true
			}
		case xml.EndElement:
			depth--
		}
	}
	return "", false
}

// onOff interprets an optional w:val of a toggle property.
func onOff(val string, present bool) bool {
	if !present {
		return false
	}
	switch val {
	case "0", "false", "off":
		return false
	}
	return true
}

func localPart(qualified string) string {
	if i := strings.IndexByte(qualified, ':'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

func attrValue(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Empty represents an empty element (used for boolean properties)
type Empty struct{}

// Style represents a style reference
type Style struct {
	Val string
}

// MarshalXML implements custom XML marshaling for Style
func (s Style) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	// The element name depends on the context (pStyle, tblStyle, etc.)
	// so we keep the provided name
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: s.Val},
	}
	return e.EncodeElement(struct{}{}, start)
}

// knownPrefixes maps namespace URIs to their conventional prefix
var knownPrefixes = map[string]string{
	// Core Word namespaces
	NamespaceMain:          "w",
	NamespaceRelationships: "r",
	"http://schemas.openxmlformats.org/officeDocument/2006/math": "m",
	namespaceXML: "xml",
	// Drawing namespaces
	NamespaceDrawing:     "wp",
	NamespaceDrawingMain: "a",
	NamespacePicture:     "pic",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing": "wp14",
	"http://schemas.microsoft.com/office/drawing/2010/main":               "a14",
	// VML namespaces
	"urn:schemas-microsoft-com:vml":           "v",
	"urn:schemas-microsoft-com:office:office": "o",
	"urn:schemas-microsoft-com:office:word":   "w10",
	// Markup compatibility
	"http://schemas.openxmlformats.org/markup-compatibility/2006": "mc",
	// Shapes, canvas, groups, ink
	"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":  "wps",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas": "wpc",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":  "wpg",
	"http://schemas.microsoft.com/office/word/2010/wordprocessingInk":    "wpi",
	// Extended Word namespaces
	"http://schemas.microsoft.com/office/word/2010/wordml":             "w14",
	"http://schemas.microsoft.com/office/word/2012/wordml":             "w15",
	"http://schemas.microsoft.com/office/word/2015/wordml/symex":       "w16se",
	"http://schemas.microsoft.com/office/word/2016/wordml/cid":         "w16cid",
	"http://schemas.microsoft.com/office/word/2018/wordml":             "w16",
	"http://schemas.microsoft.com/office/word/2018/wordml/cex":         "w16cex",
	"http://schemas.microsoft.com/office/word/2020/wordml/sdtdatahash": "w16sdtdh",
	"http://schemas.microsoft.com/office/word/2023/wordml/word16du":    "w16du",
	"http://schemas.microsoft.com/office/word/2006/wordml":             "wne",
}

// namespaces resolves namespace URIs back to the prefixes a part declared.
type namespaces map[string]string

// newNamespaces seeds a scope with the conventional prefixes and the
// declarations found on start.
func newNamespaces(start xml.StartElement) namespaces {
	ns := make(namespaces, len(knownPrefixes)+len(start.Attr))
	for uri, prefix := range knownPrefixes {
		ns[uri] = prefix
	}
	ns.declare(start.Attr)
	return ns
}

func (ns namespaces) declare(attrs []xml.Attr) {
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			ns[a.Value] = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			ns[a.Value] = ""
		}
	}
}

// child returns ns extended with the declarations on attrs, or ns itself
// when attrs declare nothing.
func (ns namespaces) child(attrs []xml.Attr) namespaces {
	declares := false
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			declares = true
			break
		}
	}
	if !declares {
		return ns
	}
	scope := make(namespaces, len(ns)+len(attrs))
	for k, v := range ns {
		scope[k] = v
	}
	scope.declare(attrs)
	return scope
}

// prefix returns the prefix for uri. An unresolved prefix reported by the
// decoder is passed through untouched.
func (ns namespaces) prefix(uri string) string {
	if p, ok := ns[uri]; ok {
		return p
	}
	if !strings.ContainsAny(uri, ":/") {
		return uri
	}
	return ""
}

func (ns namespaces) qualify(n xml.Name) xml.Name {
	if n.Space == "" {
		return xml.Name{Local: n.Local}
	}
	if p := ns.prefix(n.Space); p != "" {
		return xml.Name{Local: p + ":" + n.Local}
	}
	return xml.Name{Local: n.Local}
}

func (ns namespaces) qualifyAttr(a xml.Attr) xml.Attr {
	switch {
	case a.Name.Space == "":
		return xml.Attr{Name: xml.Name{Local: a.Name.Local}, Value: a.Value}
	case a.Name.Space == "xmlns":
		return xml.Attr{Name: xml.Name{Local: "xmlns:" + a.Name.Local}, Value: a.Value}
	}
	return xml.Attr{Name: ns.qualify(a.Name), Value: a.Value}
}

func (ns namespaces) qualifyStart(t xml.StartElement) xml.StartElement {
	out := xml.StartElement{Name: ns.qualify(t.Name)}
	if len(t.Attr) > 0 {
		out.Attr = make([]xml.Attr, len(t.Attr))
		for i, a := range t.Attr {
			out.Attr[i] = ns.qualifyAttr(a)
		}
	}
	return out
}

// captureRaw reads the element opened by start up to its end tag.
func captureRaw(d *xml.Decoder, start xml.StartElement, ns namespaces) (*RawXMLElement, error) {
	scopes := []namespaces{ns.child(start.Attr)}
	first := scopes[0].qualifyStart(start)
	raw := &RawXMLElement{XMLName: first.Name, Tokens: []xml.Token{first}}

	for len(scopes) > 0 {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		scope := scopes[len(scopes)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			inner := scope.child(t.Attr)
			scopes = append(scopes, inner)
			raw.Tokens = append(raw.Tokens, inner.qualifyStart(t))
		case xml.EndElement:
			scopes = scopes[:len(scopes)-1]
			raw.Tokens = append(raw.Tokens, xml.EndElement{Name: scope.qualify(t.Name)})
		case xml.ProcInst:
			// Not allowed past the prolog when re-encoding
		default:
			raw.Tokens = append(raw.Tokens, xml.CopyToken(t))
		}
	}
	return raw, nil
}

// encodeAll writes each element in order
func encodeAll[T any](e *xml.Encoder, items []T) error {
	for _, item := range items {
		if err := e.Encode(item); err != nil {
			return err
		}
	}
	return nil
}
