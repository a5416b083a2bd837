package docgen

import (
	"context"
	"time"

	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// Letter page in twips with 0.5in top/bottom and 1in side margins
const (
	letterWidthTwips  = 12240
	letterHeightTwips = 15840
	marginYTwips      = 720
	marginXTwips      = 1440
	listWidthTwips    = 8640
)

// DOCXBackend renders the agreement as a structured Word document
type DOCXBackend struct {
	Now func() time.Time
}

// NewDOCXBackend creates a DOCX backend
func NewDOCXBackend() *DOCXBackend {
	return &DOCXBackend{Now: time.Now}
}

func (b *DOCXBackend) Format() string { return FormatDOCX }

// Render builds the agreement document inside a fresh package
func (b *DOCXBackend) Render(ctx context.Context, doc *AgreementDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	pkg := NewPackage(agreementTitle, now())
	document, err := pkg.Document()
	if err != nil {
		return nil, err
	}

	for _, block := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		elems, err := docxBlock(pkg, block, doc.Signature)
		if err != nil {
			return nil, err
		}
		document.Body.Add(elems...)
	}
	document.Body.SectionProperties = docxml.NewSectionProperties(
		letterWidthTwips, letterHeightTwips, marginYTwips, marginXTwips, marginYTwips, marginXTwips)

	data, err := pkg.Bytes()
	if err != nil {
		return nil, NewDocumentError("render", "agreement docx", err)
	}
	return data, nil
}

func docxBlock(pkg *Package, b Block, signature *SignatureImage) ([]docxml.BodyElement, error) {
	switch b.Kind {
	case BlockTitle:
		return []docxml.BodyElement{docxml.NewParagraph("Title", b.Text)}, nil
	case BlockHeading:
		return []docxml.BodyElement{docxml.NewParagraph("Heading2", b.Text)}, nil
	case BlockParagraph:
		return []docxml.BodyElement{docxml.NewParagraph("", b.Text)}, nil
	case BlockList:
		out := make([]docxml.BodyElement, 0, len(b.Items))
		for _, item := range b.Items {
			p := docxml.NewParagraph("", item)
			p.Properties = &docxml.ParagraphProperties{Spacing: &docxml.Spacing{}}
			out = append(out, p)
		}
		return out, nil
	case BlockTable:
		table := docxml.NewTable("TableGrid", true, 5760, 2880)
		if len(b.Header) > 0 {
			table.AddRow(docxCells(b.Header)...)
		}
		for _, row := range b.Rows {
			table.AddRow(docxCells(row)...)
		}
		return []docxml.BodyElement{table}, nil
	case BlockSpacer:
		return nil, nil
	case BlockSignature:
		p := docxml.NewParagraph("", b.Text)
		out := []docxml.BodyElement{p}
		if signature != nil {
			relID, err := pkg.AddImage(signature.PNG)
			if err != nil {
				return nil, err
			}
			img := &docxml.Paragraph{}
			img.AddRun(docxml.NewInlineImage(relID, 1, "signature.png", signature.Width, signature.Height))
			out = append(out, img)
		}
		return out, nil
	case BlockFooter:
		out := make([]docxml.BodyElement, 0, len(b.Items))
		for _, line := range b.Items {
			out = append(out, docxml.NewParagraph("Footer", line))
		}
		return out, nil
	}
	return nil, nil
}

func docxCells(texts []string) []*docxml.TableCell {
	widths := []int{5760, 2880}
	cells := make([]*docxml.TableCell, 0, len(texts))
	for i, text := range texts {
		w := listWidthTwips
		if i < len(widths) {
			w = widths[i]
		}
		cells = append(cells, docxml.NewTableCell(w, text))
	}
	return cells
}
