package docgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

var exampleAgreementFields = Fields{
	FieldClientName:      "Acme FZE",
	FieldDateOfAgreement: "2025/03/25",
	FieldVATRegFee:       "500 BHD",
	FieldConsultancyFee:  "300 BHD",
}

var agreementSectionTitles = []string{
	"Service Agreement for VAT Services and Business Support Services",
	"Introduction:",
	"Scope of Services:",
	"Fee and Payment Terms:",
	"Term and Termination:",
	"Assumptions Regarding Scope of Work",
	"Confidentiality:",
	"Ownership of Work Product:",
	"Liability:",
	"Legislative Compliance:",
	"Indemnification:",
	"Governing Law:",
	"Distribution of Deliverables:",
	"Timelines",
	"Force Majeure:",
	"Other terms:",
	"Our Company Bank Details:",
	"Conclusion and Acceptance:",
}

func TestFormatAgreementDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025/03/25", want: "25-03-2025"},
		{in: " 2024/02/29 ", want: "29-02-2024"},
		{in: "2025/1/5", wantErr: true},
		{in: "25/03/2025", wantErr: true},
		{in: "2025-03-25", wantErr: true},
		{in: "2023/02/29", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatAgreementDate(tt.in)
			if tt.wantErr {
				var dateErr *DateFormatError
				require.ErrorAs(t, err, &dateErr)
				assert.Equal(t, FieldDateOfAgreement, dateErr.Field)
				assert.Equal(t, tt.in, dateErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildAgreement(t *testing.T) {
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), nil)
	require.NoError(t, err)

	assert.Equal(t, "25-03-2025", doc.Date)
	if diff := cmp.Diff(agreementSectionTitles, doc.SectionTitles()); diff != "" {
		t.Errorf("SectionTitles() mismatch (-want +got):\n%s", diff)
	}

	require.NotEmpty(t, doc.Blocks)
	assert.Equal(t, BlockTitle, doc.Blocks[0].Kind)
	assert.Equal(t, "B.K.R SUPPORT SERVICES", doc.Blocks[0].Text)
	assert.Equal(t, BlockFooter, doc.Blocks[len(doc.Blocks)-1].Kind)

	text := doc.Text()
	assert.Contains(t, text, "Date: 25-03-2025")
	assert.Contains(t, text, "Ref Number: BKR03-2025-CR702")
	assert.Contains(t, text, "Client/First Party: Acme FZE")
	assert.Contains(t, text, "Atten: ", "missing fields render empty")

	var table *Block
	for i := range doc.Blocks {
		if doc.Blocks[i].Kind == BlockTable {
			table = &doc.Blocks[i]
		}
	}
	require.NotNil(t, table)
	assert.Equal(t, []string{"Our office fee", "Fees"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "500 BHD", table.Rows[0][1])
	assert.Equal(t, "300 BHD", table.Rows[1][1])
}

func TestBuildAgreementBadDate(t *testing.T) {
	fields := exampleAgreementFields.Merge(Fields{FieldDateOfAgreement: "25/03/2025"})

	doc, err := BuildAgreement(AgreementFieldsFrom(fields), nil)
	assert.Nil(t, doc)
	assert.True(t, IsDateFormatError(err))
}

func TestAgreementFieldsFromKeepsText(t *testing.T) {
	f := AgreementFieldsFrom(Fields{
		FieldClientName: "Acme <Bahrain> W.L.L & Co",
		FieldEmail:      " John Doe <john@acme.com> ",
	})
	assert.Equal(t, "Acme <Bahrain> W.L.L & Co", f.ClientName)
	assert.Equal(t, "John Doe <john@acme.com>", f.Email)
	assert.Equal(t, "", f.AuthorizedPerson)
}

func TestBlockKindString(t *testing.T) {
	assert.Equal(t, "heading", BlockHeading.String())
	assert.Equal(t, "footer", BlockFooter.String())
	assert.Equal(t, "unknown", BlockKind(42).String())
}

// pdfText renders doc with an uncompressed PDF backend and returns its lines
func pdfText(t *testing.T, doc *AgreementDocument) []string {
	t.Helper()
	backend := &PDFBackend{Now: fixedClock()}
	data, err := backend.Render(context.Background(), doc)
	require.NoError(t, err)

	lines, err := PDFTextLines(data)
	require.NoError(t, err)
	return lines
}

// docxHeadings returns the Heading2 paragraph texts of a DOCX
func docxHeadings(t *testing.T, data []byte) []string {
	t.Helper()
	pkg, err := OpenPackageBytes(data)
	require.NoError(t, err)
	doc, err := pkg.Document()
	require.NoError(t, err)

	var out []string
	for _, p := range docxml.Paragraphs(doc.Body.Elements) {
		if p.StyleID() == "Heading2" {
			out = append(out, p.GetText())
		}
	}
	return out
}

// filterLines keeps the lines present in want, in order
func filterLines(lines, want []string) []string {
	keep := map[string]bool{}
	for _, w := range want {
		keep[w] = true
	}
	var out []string
	for _, l := range lines {
		if keep[l] {
			out = append(out, l)
		}
	}
	return out
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}

func TestPDFBackend(t *testing.T) {
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), nil)
	require.NoError(t, err)

	data, err := NewPDFBackend().Render(context.Background(), doc)
	require.NoError(t, err)
	pages, err := ValidatePDF(data)
	require.NoError(t, err)
	assert.Greater(t, pages, 1)

	lines := pdfText(t, doc)
	assert.Equal(t, "B.K.R SUPPORT SERVICES", lines[0])
	assert.Contains(t, lines, "Date: 25-03-2025")

	first, second := indexOf(lines, "500 BHD"), indexOf(lines, "300 BHD")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "VAT registration fee row comes first")
	assert.Less(t, indexOf(lines, "Our office fee"), first)
}

func TestDOCXBackend(t *testing.T) {
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), nil)
	require.NoError(t, err)

	data, err := NewDOCXBackend().Render(context.Background(), doc)
	require.NoError(t, err)

	texts := paragraphTexts(t, data)
	assert.Equal(t, "B.K.R SUPPORT SERVICES", texts[0])
	assert.Contains(t, texts, "Date: 25-03-2025")

	pkg, err := OpenPackageBytes(data)
	require.NoError(t, err)
	body, err := pkg.Document()
	require.NoError(t, err)

	tables := docxml.Tables(body.Body.Elements)
	require.Len(t, tables, 1)
	rows := tables[0].Rows()
	require.Len(t, rows, 3)
	var got [][]string
	for _, row := range rows {
		var cells []string
		for _, c := range row.Cells() {
			cells = append(cells, c.GetText())
		}
		got = append(got, cells)
	}
	want := [][]string{
		{"Our office fee", "Fees"},
		{"1. VAT registration (one-time fee)", "500 BHD"},
		{"2. For the VAT registration impact assessment and Consultancy (one-time fee)", "300 BHD"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fees table mismatch (-want +got):\n%s", diff)
	}

	footer := texts[len(texts)-1]
	assert.True(t, strings.HasPrefix(footer, "Bldg 2196"), footer)
}

func TestBackendsShareSectionTitles(t *testing.T) {
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), nil)
	require.NoError(t, err)
	want := doc.SectionTitles()

	pdfTitles := filterLines(pdfText(t, doc), want)
	if diff := cmp.Diff(want, pdfTitles); diff != "" {
		t.Errorf("pdf section titles mismatch (-want +got):\n%s", diff)
	}

	data, err := (&DOCXBackend{Now: fixedClock()}).Render(context.Background(), doc)
	require.NoError(t, err)
	if diff := cmp.Diff(want, docxHeadings(t, data)); diff != "" {
		t.Errorf("docx section titles mismatch (-want +got):\n%s", diff)
	}
}

func TestBackendsKeepNonLatinText(t *testing.T) {
	fields := exampleAgreementFields.Merge(Fields{FieldClientName: "شركة أكمي Łódź"})
	doc, err := BuildAgreement(AgreementFieldsFrom(fields), nil)
	require.NoError(t, err)
	want := "Client/First Party: شركة أكمي Łódź"

	assert.Contains(t, pdfText(t, doc), want)

	data, err := (&DOCXBackend{Now: fixedClock()}).Render(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, paragraphTexts(t, data), want)
}

func TestPDFBackendRejectsSupplementaryCharacters(t *testing.T) {
	fields := exampleAgreementFields.Merge(Fields{FieldClientName: "Acme \U0001F600"})
	doc, err := BuildAgreement(AgreementFieldsFrom(fields), nil)
	require.NoError(t, err)

	data, err := NewPDFBackend().Render(context.Background(), doc)
	assert.Nil(t, data)
	assert.True(t, IsValidationError(err), "got %v", err)
	assert.Contains(t, err.Error(), "U+1F600")
}

func TestBackendsWithSignature(t *testing.T) {
	sig, err := PrepareSignature(testPNG(t, 200, 80), 300, 120)
	require.NoError(t, err)
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), sig)
	require.NoError(t, err)

	pdfData, err := NewPDFBackend().Render(context.Background(), doc)
	require.NoError(t, err)
	_, err = ValidatePDF(pdfData)
	require.NoError(t, err)

	docxData, err := NewDOCXBackend().Render(context.Background(), doc)
	require.NoError(t, err)
	pkg, err := OpenPackageBytes(docxData)
	require.NoError(t, err)
	_, ok := pkg.Part("word/media/image1.png")
	assert.True(t, ok)

	body, err := pkg.Document()
	require.NoError(t, err)
	var drawings int
	for _, p := range docxml.Paragraphs(body.Body.Elements) {
		if p.HasDrawing() {
			drawings++
		}
	}
	assert.Equal(t, 1, drawings)
}

func TestBackendsCancelled(t *testing.T) {
	doc, err := BuildAgreement(AgreementFieldsFrom(exampleAgreementFields), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, backend := range []AgreementBackend{NewPDFBackend(), NewDOCXBackend()} {
		data, err := backend.Render(ctx, doc)
		assert.Nil(t, data, backend.Format())
		assert.True(t, errors.Is(err, context.Canceled), backend.Format())
	}
}

func TestAssembler(t *testing.T) {
	for _, backend := range []AgreementBackend{NewPDFBackend(), NewDOCXBackend()} {
		t.Run(backend.Format(), func(t *testing.T) {
			asm := NewAssembler(backend)
			assert.Same(t, backend, asm.Backend())

			artifact, err := asm.Assemble(context.Background(), exampleAgreementFields, nil)
			require.NoError(t, err)
			assert.Equal(t, backend.Format(), artifact.Format)
			assert.Equal(t, "vat_agreement."+backend.Format(), artifact.DownloadName)
			assert.Equal(t, ContentTypeFor(backend.Format()), artifact.ContentType)
			assert.True(t, strings.HasPrefix(artifact.Name, "agreement_"), artifact.Name)
			assert.Positive(t, artifact.Size())
		})
	}
}

func TestAssemblerBadDate(t *testing.T) {
	fields := exampleAgreementFields.Merge(Fields{FieldDateOfAgreement: "25/03/2025"})

	for _, backend := range []AgreementBackend{NewPDFBackend(), NewDOCXBackend()} {
		artifact, err := NewAssembler(backend).Assemble(context.Background(), fields, nil)
		assert.Nil(t, artifact, backend.Format())
		assert.True(t, IsDateFormatError(err), backend.Format())
	}
}
