package docgen

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Page geometry of the agreement PDF, in points
const (
	pdfMarginX       = 72
	pdfMarginY       = 36
	pdfListWidth     = 432
	pdfCellPad       = 2
	pdfBodyLeading   = 12
	pdfBodyAfter     = 8
	pdfSpacer        = 12
	pdfPixelToPoints = 0.75
)

// pdfFont is the embedded TrueType family used for all agreement text. It
// covers Latin, Cyrillic, Greek and Arabic, so client names render as typed.
const pdfFont = "DejaVu"

//go:embed fonts/DejaVuSansCondensed.ttf
var dejaVuSans []byte

// PDFBackend renders the agreement as a page-flow PDF
type PDFBackend struct {
	// Compress enables stream compression
	Compress bool
	Now      func() time.Time
}

// NewPDFBackend creates a PDF backend with compressed output
func NewPDFBackend() *PDFBackend {
	return &PDFBackend{Compress: true, Now: time.Now}
}

func (b *PDFBackend) Format() string { return FormatPDF }

// Render lays out the agreement on Letter pages and validates the result
func (b *PDFBackend) Render(ctx context.Context, doc *AgreementDocument) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkPDFText(doc); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMarginX, pdfMarginY, pdfMarginX)
	pdf.SetAutoPageBreak(true, pdfMarginY)
	pdf.SetCompression(b.Compress)
	pdf.SetTitle(agreementTitle, true)
	pdf.SetCreator("go-docgen", true)
	if b.Now != nil {
		pdf.SetCreationDate(b.Now())
	}

	pdf.AddUTF8FontFromBytes(pdfFont, "", dejaVuSans)
	pdf.SetFont(pdfFont, "", 10)

	r := &pdfRenderer{pdf: pdf}
	pdf.AddPage()

	for _, block := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.block(block, doc.Signature)
	}

	if pdf.Err() {
		return nil, NewDocumentError("render", "agreement pdf", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, NewDocumentError("render", "agreement pdf", err)
	}
	if _, err := ValidatePDF(buf.Bytes()); err != nil {
		return nil, NewDocumentError("validate", "agreement pdf", err)
	}
	return buf.Bytes(), nil
}

// checkPDFText rejects characters outside the Basic Multilingual Plane,
// which the font width tables cannot index
func checkPDFText(doc *AgreementDocument) error {
	for _, text := range doc.Text() {
		for _, r := range text {
			if r > 0xFFFF {
				return NewValidationError("text", fmt.Sprintf("character %U in %q cannot be written to a pdf", r, text))
			}
		}
	}
	return nil
}

type pdfRenderer struct {
	pdf *fpdf.Fpdf
}

func (r *pdfRenderer) block(b Block, signature *SignatureImage) {
	pdf := r.pdf
	switch b.Kind {
	case BlockTitle:
		pdf.SetFont(pdfFont, "", 14)
		pdf.MultiCell(0, 16.8, b.Text, "", "C", false)
		pdf.Ln(12)
	case BlockHeading:
		pdf.Bookmark(b.Text, 0, -1)
		pdf.SetFont(pdfFont, "", 12)
		pdf.MultiCell(0, 14.4, b.Text, "", "L", false)
		pdf.Ln(10)
	case BlockParagraph:
		r.body(b.Text)
	case BlockList:
		pdf.SetFont(pdfFont, "", 10)
		for _, item := range b.Items {
			if item == "" {
				pdf.Ln(pdfBodyLeading)
				continue
			}
			pdf.MultiCell(pdfListWidth, pdfBodyLeading, item, "", "L", false)
		}
	case BlockTable:
		pdf.SetFont(pdfFont, "", 10)
		widths := []float64{288, 144}
		if len(b.Header) > 0 {
			r.tableRow(widths, b.Header)
		}
		for _, row := range b.Rows {
			r.tableRow(widths, row)
		}
	case BlockSpacer:
		pdf.Ln(pdfSpacer)
	case BlockSignature:
		r.body(b.Text)
		if signature != nil {
			r.image(signature)
		}
	case BlockFooter:
		pdf.SetFont(pdfFont, "", 8)
		for _, line := range b.Items {
			pdf.MultiCell(0, 10, line, "", "C", false)
		}
	}
}

func (r *pdfRenderer) body(text string) {
	r.pdf.SetFont(pdfFont, "", 10)
	r.pdf.MultiCell(0, pdfBodyLeading, text, "", "L", false)
	r.pdf.Ln(pdfBodyAfter)
}

// tableRow draws one grid row, growing it to fit the tallest cell
func (r *pdfRenderer) tableRow(widths []float64, cells []string) {
	pdf := r.pdf
	lines := 1
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if n := len(pdf.SplitText(cell, widths[i])); n > lines {
			lines = n
		}
	}
	h := float64(lines)*pdfBodyLeading + 2*pdfCellPad

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-pdfMarginY {
		pdf.AddPage()
	}

	x, y := pdf.GetXY()
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		pdf.Rect(x, y, widths[i], h, "D")
		pdf.SetXY(x, y+pdfCellPad)
		pdf.MultiCell(widths[i], pdfBodyLeading, cell, "", "L", false)
		x += widths[i]
	}
	pdf.SetXY(pdfMarginX, y+h)
}

// image places the signature at the left margin below the current line
func (r *pdfRenderer) image(sig *SignatureImage) {
	pdf := r.pdf
	w := float64(sig.Width) * pdfPixelToPoints
	h := float64(sig.Height) * pdfPixelToPoints

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-pdfMarginY {
		pdf.AddPage()
	}

	name := fmt.Sprintf("signature-%p", sig)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(sig.PNG))
	y := pdf.GetY()
	pdf.ImageOptions(name, pdfMarginX, y, w, h, false, opts, 0, "")
	pdf.SetY(y + h)
}
