package docgen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

func parseBody(t *testing.T, body string) *xml.Document {
	t.Helper()
	doc, err := xml.ParseDocument(strings.NewReader(documentXML(body)))
	require.NoError(t, err)
	return doc
}

func allText(doc *xml.Document) []string {
	var out []string
	for _, p := range xml.Paragraphs(doc.Body.Elements) {
		out = append(out, p.GetText())
	}
	return out
}

func runTexts(p *xml.Paragraph) []string {
	var out []string
	for _, c := range p.Content {
		if r, ok := c.(*xml.Run); ok {
			out = append(out, r.GetText())
		}
	}
	return out
}

func placeholders(kv ...string) *Placeholders {
	ph := NewPlaceholders()
	for i := 0; i+1 < len(kv); i += 2 {
		ph.Set(kv[i], kv[i+1])
	}
	return ph
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name string
		body string
		ph   *Placeholders
		want []string
	}{
		{
			name: "single run",
			body: paraXML("Client: <<Client Name>>"),
			ph:   placeholders("<<Client Name>>", "Acme FZE"),
			want: []string{"Client: Acme FZE"},
		},
		{
			name: "token split across runs",
			body: paraXML("Client: <<Cli", "ent Na", "me>> (UAE)"),
			ph:   placeholders("<<Client Name>>", "Acme FZE"),
			want: []string{"Client: Acme FZE (UAE)"},
		},
		{
			name: "every occurrence",
			body: paraXML("<<Name>>, <<Name>>") + paraXML("<<Name>>"),
			ph:   placeholders("<<Name>>", "X"),
			want: []string{"X, X", "X"},
		},
		{
			name: "unmapped token left verbatim",
			body: paraXML("<<Known>> <<Unknown>>"),
			ph:   placeholders("<<Known>>", "k"),
			want: []string{"k <<Unknown>>"},
		},
		{
			name: "missing value renders empty",
			body: paraXML("GST: <<GST>>."),
			ph:   placeholders("<<GST>>", ""),
			want: []string{"GST: ."},
		},
		{
			name: "table cells",
			body: tableXML(paraXML("<<A>>"), paraXML("x <<B>> y")),
			ph:   placeholders("<<A>>", "1", "<<B>>", "2"),
			want: []string{"1", "x 2 y"},
		},
		{
			name: "nested table",
			body: tableXML(paraXML("outer <<A>>") + tableXML(paraXML("inner <<A>>"))),
			ph:   placeholders("<<A>>", "a"),
			want: []string{"outer a", "inner a"},
		},
		{
			name: "value containing later token is substituted again",
			body: paraXML("<<First>>"),
			ph:   placeholders("<<First>>", "<<Second>>", "<<Second>>", "2"),
			want: []string{"2"},
		},
		{
			name: "no tokens",
			body: paraXML("Plain text"),
			ph:   placeholders("<<A>>", "a"),
			want: []string{"Plain text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseBody(t, tt.body)
			got := Substitute(doc, tt.ph)
			assert.Same(t, doc, got)
			if diff := cmp.Diff(tt.want, allText(doc)); diff != "" {
				t.Errorf("Substitute() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubstituteKeepsRunFormatting(t *testing.T) {
	body := `<w:p>` + runXML("Dear ", false) + runXML("<<Cli", true) + runXML("ent Name>>,", false) + `</w:p>`
	doc := parseBody(t, body)

	Substitute(doc, placeholders("<<Client Name>>", "Acme"))

	para := xml.Paragraphs(doc.Body.Elements)[0]
	assert.Equal(t, "Dear Acme,", para.GetText())
	assert.Equal(t, []string{"Dear ", "Acme", ","}, runTexts(para))

	bold := para.Content[1].(*xml.Run)
	require.NotNil(t, bold.Properties)
	assert.True(t, bold.Properties.Bold, "value takes the formatting of the run where the token starts")
}

func TestSubstituteMergesIdenticalRuns(t *testing.T) {
	doc := parseBody(t, paraXML("Hello ", "<<Na", "me>>", "!"))

	Substitute(doc, placeholders("<<Name>>", "World"))

	para := xml.Paragraphs(doc.Body.Elements)[0]
	assert.Equal(t, []string{"Hello World!"}, runTexts(para))
}

func TestSubstituteLeavesUntouchedParagraphs(t *testing.T) {
	doc := parseBody(t, paraXML("a", "b"))

	Substitute(doc, placeholders("<<A>>", "x"))

	para := xml.Paragraphs(doc.Body.Elements)[0]
	assert.Equal(t, []string{"a", "b"}, runTexts(para), "runs are only merged when a token is present")
}

func TestCountReplacements(t *testing.T) {
	doc := parseBody(t, paraXML("<<A>> <<A>>")+tableXML(paraXML("<<B>>"), paraXML("<<C>>")))

	n := CountReplacements(doc, placeholders("<<A>>", "1", "<<B>>", "2", "<<D>>", "4"))
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"1 1", "2", "<<C>>"}, allText(doc))

	assert.Equal(t, 0, CountReplacements(nil, placeholders()))
}

func TestSubstitutePart(t *testing.T) {
	part, err := xml.ParseHeaderFooter(strings.NewReader(footerXML(paraXML("Invoice <<Invoice Number>>"))))
	require.NoError(t, err)

	n := SubstitutePart(part, placeholders("<<Invoice Number>>", "42"))
	assert.Equal(t, 1, n)
	assert.Equal(t, "Invoice 42", xml.Paragraphs(part.Elements)[0].GetText())

	assert.Equal(t, 0, SubstitutePart(nil, placeholders()))
}

func TestSubstituteInsideContentControlsAndInsertions(t *testing.T) {
	body := `<w:sdt><w:sdtPr><w:tag w:val="client"/></w:sdtPr><w:sdtContent>` +
		paraXML("Client: <<Client", " Name>>") +
		`</w:sdtContent></w:sdt>` +
		`<w:p>` + runXML("Fee: <<VAT", false) +
		`<w:ins w:id="1" w:author="Reviewer">` + runXML(" Fee>>", false) + `</w:ins>` +
		`<w:sdt><w:sdtContent>` + runXML(" (<<Currency>>)", false) + `</w:sdtContent></w:sdt></w:p>`
	doc := parseBody(t, body)

	n := CountReplacements(doc, placeholders(
		"<<Client Name>>", "Acme FZE",
		"<<VAT Fee>>", "500",
		"<<Currency>>", "BHD",
	))
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Client: Acme FZE", "Fee: 500 (BHD)"}, allText(doc))

	out, err := xml.MarshalDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<w:tag w:val="client"></w:tag>`)
	assert.Contains(t, string(out), `<w:ins w:id="1" w:author="Reviewer">`)
}
