package docgen

import (
	"fmt"
	"strings"
)

// DocumentType identifies one of the documents the generator can produce
type DocumentType string

const (
	TypeVATAgreement  DocumentType = "vat-agreement"
	TypeInvoiceIndia  DocumentType = "invoice-india"
	TypeInvoiceROW    DocumentType = "invoice-row"
	TypeNDAIndia      DocumentType = "nda-india"
	TypeNDAROW        DocumentType = "nda-row"
	TypeContractIndia DocumentType = "contract-india"
	TypeContractROW   DocumentType = "contract-row"
)

// FieldSource tells where a field value comes from
type FieldSource int

const (
	// SourceInput values are entered by the user
	SourceInput FieldSource = iota
	// SourceToday is the generation date as DD-MM-YYYY
	SourceToday
	// SourceCounter is the next invoice number
	SourceCounter
)

func (s FieldSource) String() string {
	switch s {
	case SourceInput:
		return "input"
	case SourceToday:
		return "today"
	case SourceCounter:
		return "counter"
	default:
		return "unknown"
	}
}

// Field describes one input of a document type
type Field struct {
	Key     string
	Label   string
	Token   string
	Default string
	Source  FieldSource
}

// DocumentSpec describes a document type: its template, if any, and fields
type DocumentSpec struct {
	Type  DocumentType
	Title string
	// Template is the file name under the template directory; empty for
	// assembled documents
	Template string
	Fields   []Field
	// Assembled documents are built from fixed content instead of a template
	Assembled bool
	// Signature reports whether a signature image is accepted
	Signature bool
}

// InputFields returns the fields the user fills in
func (s DocumentSpec) InputFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Source == SourceInput {
			out = append(out, f)
		}
	}
	return out
}

// Defaults returns the default value of every field that has one
func (s DocumentSpec) Defaults() Fields {
	out := Fields{}
	for _, f := range s.Fields {
		if f.Default != "" {
			out[f.Key] = f.Default
		}
	}
	return out
}

// DownloadName returns the user-facing file name for ext ("docx" or "pdf")
func (s DocumentSpec) DownloadName(ext string) string {
	if s.Assembled {
		return "vat_agreement." + ext
	}
	return s.Title + "_Generated." + ext
}

func input(key, label, token string) Field {
	return Field{Key: key, Label: label, Token: token, Source: SourceInput}
}

func invoiceFields() []Field {
	return []Field{
		input("client_name", "Client Name", "<<Client Name>>"),
		input("company_name", "Company Name", "<<Company Name>>"),
		{Key: "invoice_number", Label: "Invoice Number", Token: "<<Invoice Number>>", Source: SourceCounter},
		{Key: "invoice_date", Label: "Invoice Date", Token: "<<Invoice Date>>", Source: SourceToday},
		input("client_address", "Client Address", "<<Client Address>>"),
		input("gst", "GST Number", "<<GST>>"),
		input("project_name", "Project Name", "<<Project Name>>"),
		input("phone_number", "Phone Number", "<<Phone Number>>"),
	}
}

func ndaFields() []Field {
	return []Field{
		input("party_a_name", "Party A Name", "<<Party A Name>>"),
		input("party_b_name", "Party B Name", "<<Party B Name>>"),
		{Key: "agreement_date", Label: "Agreement Date", Token: "<<Agreement Date>>", Source: SourceToday},
	}
}

func contractFields() []Field {
	return []Field{
		input("consultant_name", "Consultant Name", "<<Consultant Name>>"),
		input("company_name", "Company Name", "<<Company Name>>"),
		{Key: "contract_date", Label: "Contract Date", Token: "<<Contract Date>>", Source: SourceToday},
	}
}

func agreementFields() []Field {
	return []Field{
		{Key: FieldDateOfAgreement, Label: "Date of Agreement (YYYY/MM/DD)", Default: "2025/03/25"},
		{Key: FieldAttention, Label: "Atten", Default: "Nothing"},
		{Key: FieldEmail, Label: "Email", Default: "testing@gmail.com"},
		{Key: FieldClientName, Label: "Client Name", Default: "Testing Team"},
		{Key: FieldCommercialRegNumber, Label: "Commercial Registration Number", Default: "ABCD"},
		{Key: FieldServiceProviderName, Label: "Service Provider Name", Default: "None"},
		{Key: FieldServiceProviderCR, Label: "Service Provider CR", Default: "None"},
		{Key: FieldVATRegFee, Label: "VAT Registration Fee", Default: "ASDGG"},
		{Key: FieldConsultancyFee, Label: "Consultancy Fee", Default: "100"},
		{Key: FieldAuthorizedPerson, Label: "Authorized Person Name", Default: "Nothing"},
	}
}

var catalog = []DocumentSpec{
	{Type: TypeVATAgreement, Title: "VAT Registration Agreement", Fields: agreementFields(), Assembled: true, Signature: true},
	{Type: TypeInvoiceIndia, Title: "Invoice India", Template: "Invoice Template - INDIA.docx", Fields: invoiceFields(), Signature: true},
	{Type: TypeInvoiceROW, Title: "Invoice ROW", Template: "Invoice Template - ROW.docx", Fields: invoiceFields(), Signature: true},
	{Type: TypeNDAIndia, Title: "NDA India", Template: "NDA Template - INDIA 4.docx", Fields: ndaFields(), Signature: true},
	{Type: TypeNDAROW, Title: "NDA ROW", Template: "NDA Template - ROW 4.docx", Fields: ndaFields(), Signature: true},
	{Type: TypeContractIndia, Title: "Contract India", Template: "Contract Template - INDIA 4.docx", Fields: contractFields(), Signature: true},
	{Type: TypeContractROW, Title: "Contract ROW", Template: "Contract Template - ROW 4.docx", Fields: contractFields(), Signature: true},
}

// Catalog returns every document type in display order
func Catalog() []DocumentSpec {
	out := make([]DocumentSpec, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the spec of t
func Lookup(t DocumentType) (DocumentSpec, bool) {
	for _, s := range catalog {
		if s.Type == t {
			return s, true
		}
	}
	return DocumentSpec{}, false
}

// ParseDocumentType accepts a type id or a display title, ignoring case
func ParseDocumentType(s string) (DocumentType, error) {
	s = strings.TrimSpace(s)
	for _, spec := range catalog {
		if strings.EqualFold(s, string(spec.Type)) || strings.EqualFold(s, spec.Title) {
			return spec.Type, nil
		}
	}
	return "", &ValidationError{Issues: []ValidationIssue{{
		Field:   "type",
		Message: fmt.Sprintf("unknown document type %q", s),
	}}}
}
