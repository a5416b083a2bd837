package xml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Table represents a table in the document
type Table struct {
	Properties *TableProperties
	Grid       *TableGrid
	// Elements holds rows and preserved elements in document order
	Elements []TableElement
}

// isBodyElement implements the BodyElement interface
func (t *Table) isBodyElement() {}

func (t *Table) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		switch tt := token.(type) {
		case xml.StartElement:
			switch tt.Name.Local {
			case "tblPr":
				raw, err := captureRaw(d, tt, ns)
				if err != nil {
					return err
				}
				props := &TableProperties{Raw: raw}
				props.Style, _ = raw.childAttr("tblStyle", "val")
				t.Properties = props
			case "tblGrid":
				raw, err := captureRaw(d, tt, ns)
				if err != nil {
					return err
				}
				t.Grid = &TableGrid{Raw: raw}
			case "tr":
				row := &TableRow{}
				if err := row.decode(d, tt, ns.child(tt.Attr)); err != nil {
					return err
				}
				t.Elements = append(t.Elements, row)
			default:
				raw, err := captureRaw(d, tt, ns)
				if err != nil {
					return err
				}
				t.Elements = append(t.Elements, raw)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for Table to ensure proper namespacing
func (t *Table) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tbl"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if t.Properties != nil {
		if err := e.Encode(t.Properties); err != nil {
			return err
		}
	}
	if t.Grid != nil {
		if err := e.Encode(t.Grid); err != nil {
			return err
		}
	}
	if err := encodeAll(e, t.Elements); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Rows returns the table rows in order
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	for _, el := range t.Elements {
		if row, ok := el.(*TableRow); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// AddRow appends a row and returns it
func (t *Table) AddRow(cells ...*TableCell) *TableRow {
	row := &TableRow{}
	for _, c := range cells {
		row.Elements = append(row.Elements, c)
	}
	t.Elements = append(t.Elements, row)
	return row
}

// NewTable creates a table with fixed column widths in twips
func NewTable(style string, bordered bool, widths ...int) *Table {
	total := 0
	for _, w := range widths {
		total += w
	}
	return &Table{
		Properties: &TableProperties{Style: style, Width: total, Borders: bordered},
		Grid:       &TableGrid{Columns: widths},
	}
}

// TableProperties represents table formatting properties
type TableProperties struct {
	Style string
	// Width in twips
	Width   int
	Borders bool
	Raw     *RawXMLElement
}

// MarshalXML implements custom XML marshaling for TableProperties
func (p *TableProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if p.Raw != nil {
		return p.Raw.MarshalXML(e, xml.StartElement{})
	}

	start := xml.StartElement{Name: xml.Name{Local: "w:tblPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p.Style != "" {
		if err := e.EncodeElement(Style{Val: p.Style}, xml.StartElement{Name: xml.Name{Local: "w:tblStyle"}}); err != nil {
			return err
		}
	}
	if p.Width > 0 {
		if err := encodeWidth(e, "w:tblW", p.Width); err != nil {
			return err
		}
	}
	if p.Borders {
		if err := encodeBorders(e, "w:tblBorders", "single", "top", "left", "bottom", "right", "insideH", "insideV"); err != nil {
			return err
		}
	} else {
		if err := encodeBorders(e, "w:tblBorders", "nil", "top", "left", "bottom", "right", "insideH", "insideV"); err != nil {
			return err
		}
	}
	layout := xml.StartElement{
		Name: xml.Name{Local: "w:tblLayout"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "w:type"}, Value: "fixed"}},
	}
	if err := e.EncodeElement(struct{}{}, layout); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableGrid represents the table grid column widths in twips
type TableGrid struct {
	Columns []int
	Raw     *RawXMLElement
}

// MarshalXML implements custom XML marshaling for TableGrid
func (g *TableGrid) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if g.Raw != nil {
		return g.Raw.MarshalXML(e, xml.StartElement{})
	}

	start := xml.StartElement{Name: xml.Name{Local: "w:tblGrid"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, w := range g.Columns {
		col := xml.StartElement{
			Name: xml.Name{Local: "w:gridCol"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "w:w"}, Value: itoa(w)}},
		}
		if err := e.EncodeElement(struct{}{}, col); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// TableRow represents a row in a table
type TableRow struct {
	// Elements holds cells and preserved elements (trPr, ...) in order
	Elements []RowElement
}

func (r *TableRow) isTableElement() {}

func (r *TableRow) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
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
			if t.Name.Local == "tc" {
				cell := &TableCell{}
				if err := cell.decode(d, t, ns.child(t.Attr)); err != nil {
					return err
				}
				r.Elements = append(r.Elements, cell)
				continue
			}
			raw, err := captureRaw(d, t, ns)
			if err != nil {
				return err
			}
			r.Elements = append(r.Elements, raw)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for TableRow to ensure proper namespacing
func (r *TableRow) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := encodeAll(e, r.Elements); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Cells returns the row's cells in order
func (r *TableRow) Cells() []*TableCell {
	var cells []*TableCell
	for _, el := range r.Elements {
		if c, ok := el.(*TableCell); ok {
			cells = append(cells, c)
		}
	}
	return cells
}

// TableCell represents a cell in a table. A cell holds paragraphs and may
// nest further tables.
type TableCell struct {
	Properties *TableCellProperties
	Content    []BodyElement
}

func (c *TableCell) isRowElement() {}

func (c *TableCell) decode(d *xml.Decoder, start xml.StartElement, ns namespaces) error {
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
			if t.Name.Local == "tcPr" {
				raw, err := captureRaw(d, t, ns)
				if err != nil {
					return err
				}
				c.Properties = &TableCellProperties{Raw: raw}
				continue
			}
			el, err := decodeBodyElement(d, t, ns)
			if err != nil {
				return err
			}
			c.Content = append(c.Content, el)
		case xml.EndElement:
			return nil
		}
	}
}

// MarshalXML implements custom XML marshaling for TableCell to ensure proper namespacing
func (c *TableCell) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "w:tc"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if c.Properties != nil {
		if err := e.Encode(c.Properties); err != nil {
			return err
		}
	}

	content := c.Content
	// A cell must end with a paragraph
	if len(content) == 0 {
		content = []BodyElement{&Paragraph{}}
	} else if _, ok := content[len(content)-1].(*Paragraph); !ok {
		content = append(content[:len(content):len(content)], &Paragraph{})
	}
	if err := encodeAll(e, content); err != nil {
		return err
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the concatenated text of all paragraphs in a cell
func (c *TableCell) GetText() string {
	var texts []string
	for _, para := range Paragraphs(c.Content) {
		if text := para.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n")
}

// NewTableCell creates a cell of the given width holding one paragraph per text
func NewTableCell(width int, texts ...string) *TableCell {
	cell := &TableCell{Properties: &TableCellProperties{Width: width}}
	for _, text := range texts {
		cell.Content = append(cell.Content, NewParagraph("", text))
	}
	return cell
}

// TableCellProperties represents cell properties
type TableCellProperties struct {
	// Width in twips
	Width int
	Raw   *RawXMLElement
}

// MarshalXML implements custom XML marshaling for TableCellProperties
func (p *TableCellProperties) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	if p.Raw != nil {
		return p.Raw.MarshalXML(e, xml.StartElement{})
	}

	start := xml.StartElement{Name: xml.Name{Local: "w:tcPr"}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if p.Width > 0 {
		if err := encodeWidth(e, "w:tcW", p.Width); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func encodeWidth(e *xml.Encoder, name string, twips int) error {
	return e.EncodeElement(struct{}{}, xml.StartElement{
		Name: xml.Name{Local: name},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "w:w"}, Value: itoa(twips)},
			{Name: xml.Name{Local: "w:type"}, Value: "dxa"},
		},
	})
}

func encodeBorders(e *xml.Encoder, name, val string, sides ...string) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, side := range sides {
		attrs := []xml.Attr{{Name: xml.Name{Local: "w:val"}, Value: val}}
		if val != "nil" {
			attrs = append(attrs,
				xml.Attr{Name: xml.Name{Local: "w:sz"}, Value: "4"},
				xml.Attr{Name: xml.Name{Local: "w:space"}, Value: "0"},
				xml.Attr{Name: xml.Name{Local: "w:color"}, Value: "000000"},
			)
		}
		border := xml.StartElement{Name: xml.Name{Local: "w:" + side}, Attr: attrs}
		if err := e.EncodeElement(struct{}{}, border); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
