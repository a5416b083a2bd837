package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"

	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// documentXML wraps body content in a w:document root
func documentXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
}

// footerXML wraps content in a w:ftr root
func footerXML(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:ftr ` + wordNS + `>` + body + `</w:ftr>`
}

// runXML is one run; bold runs carry a w:b property. Text is escaped the
// way Word writes it, so "<<Name>>" appears as "&lt;&lt;Name&gt;&gt;".
func runXML(text string, bold bool) string {
	props := ""
	if bold {
		props = `<w:rPr><w:b/></w:rPr>`
	}
	var escaped bytes.Buffer
	_ = xml.EscapeText(&escaped, []byte(text))
	return `<w:r>` + props + `<w:t xml:space="preserve">` + escaped.String() + `</w:t></w:r>`
}

// paraXML is a paragraph of plain runs, one per text
func paraXML(texts ...string) string {
	var sb strings.Builder
	sb.WriteString(`<w:p>`)
	for _, t := range texts {
		sb.WriteString(runXML(t, false))
	}
	sb.WriteString(`</w:p>`)
	return sb.String()
}

// tableXML is a one-row table whose cells hold the given content
func tableXML(cells ...string) string {
	var sb strings.Builder
	sb.WriteString(`<w:tbl><w:tr>`)
	for _, c := range cells {
		sb.WriteString(`<w:tc>` + c + `</w:tc>`)
	}
	sb.WriteString(`</w:tr></w:tbl>`)
	return sb.String()
}

// buildDOCX creates a DOCX archive in memory. extra maps part names to
// content.
func buildDOCX(t *testing.T, document string, extra map[string]string) []byte {
	t.Helper()

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
			`</Relationships>`,
		"word/document.xml": document,
	}
	for name, content := range extra {
		parts[name] = content
	}

	names := []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/_rels/document.xml.rels"}
	for name := range extra {
		names = append(names, name)
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// writeTemplate stores a template for spec under dir
func writeTemplate(t *testing.T, dir string, spec DocumentSpec, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, spec.Template), data, 0o644))
}

// mustLookup returns the spec of typ
func mustLookup(t *testing.T, typ DocumentType) DocumentSpec {
	t.Helper()
	spec, ok := Lookup(typ)
	require.True(t, ok, "unknown type %s", typ)
	return spec
}

// paragraphTexts returns the text of every paragraph of a serialized DOCX
func paragraphTexts(t *testing.T, data []byte) []string {
	t.Helper()
	pkg, err := OpenPackageBytes(data)
	require.NoError(t, err)
	doc, err := pkg.Document()
	require.NoError(t, err)

	var out []string
	for _, p := range docxml.Paragraphs(doc.Body.Elements) {
		out = append(out, p.GetText())
	}
	return out
}

// testPNG encodes a solid w x h image
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 20, G: 40, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// testPDF renders a one page PDF
func testPDF(t *testing.T) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(100, 14, "converted")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// fixedClock returns a clock stopped at 2025-03-25 10:30:00 UTC
func fixedClock() func() time.Time {
	ts := time.Date(2025, time.March, 25, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

// fakeConverter writes Output (or nothing) next to the DOCX and records
// the paths it saw
type fakeConverter struct {
	Output []byte
	Err    error
	// Block waits for the context to end before returning
	Block bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeConverter) Name() string { return "fake" }

func (f *fakeConverter) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, docxPath)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	pdfPath := pdfPathFor(docxPath, outDir)
	if f.Output != nil {
		if err := os.WriteFile(pdfPath, f.Output, 0o600); err != nil {
			return "", err
		}
	}
	return pdfPath, f.Err
}

func (f *fakeConverter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// dirEntries lists the names under dir
func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
