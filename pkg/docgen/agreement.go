package docgen

import (
	"context"
	"strings"
	"time"
)

// Agreement field keys
const (
	FieldDateOfAgreement     = "date_of_agreement"
	FieldAttention           = "attention"
	FieldEmail               = "email"
	FieldClientName          = "client_name"
	FieldCommercialRegNumber = "commercial_reg_number"
	FieldServiceProviderName = "service_provider_name"
	FieldServiceProviderCR   = "service_provider_cr"
	FieldVATRegFee           = "vat_reg_fee"
	FieldConsultancyFee      = "consultancy_fee"
	FieldAuthorizedPerson    = "authorized_person"
)

// AgreementDateLayout is the layout date_of_agreement is entered in
const AgreementDateLayout = "2006/01/02"

// AgreementFields holds the values interpolated into the VAT agreement
type AgreementFields struct {
	DateOfAgreement     string
	Attention           string
	Email               string
	ClientName          string
	CommercialRegNumber string
	ServiceProviderName string
	ServiceProviderCR   string
	VATRegFee           string
	ConsultancyFee      string
	AuthorizedPerson    string
}

// AgreementFieldsFrom copies the agreement fields out of a field set.
// Values are normalized, never filtered; missing values are empty.
func AgreementFieldsFrom(f Fields) AgreementFields {
	return AgreementFields{
		DateOfAgreement:     NormalizeValue(f.Get(FieldDateOfAgreement)),
		Attention:           NormalizeValue(f.Get(FieldAttention)),
		Email:               NormalizeValue(f.Get(FieldEmail)),
		ClientName:          NormalizeValue(f.Get(FieldClientName)),
		CommercialRegNumber: NormalizeValue(f.Get(FieldCommercialRegNumber)),
		ServiceProviderName: NormalizeValue(f.Get(FieldServiceProviderName)),
		ServiceProviderCR:   NormalizeValue(f.Get(FieldServiceProviderCR)),
		VATRegFee:           NormalizeValue(f.Get(FieldVATRegFee)),
		ConsultancyFee:      NormalizeValue(f.Get(FieldConsultancyFee)),
		AuthorizedPerson:    NormalizeValue(f.Get(FieldAuthorizedPerson)),
	}
}

// FormatAgreementDate converts a YYYY/MM/DD date to DD-MM-YYYY
func FormatAgreementDate(value string) (string, error) {
	t, err := time.Parse(AgreementDateLayout, strings.TrimSpace(value))
	if err != nil {
		return "", NewDateFormatError(FieldDateOfAgreement, value, AgreementDateLayout, err)
	}
	return t.Format(DisplayDateLayout), nil
}

// BlockKind classifies a block of agreement content
type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockHeading
	BlockParagraph
	BlockList
	BlockTable
	BlockSpacer
	BlockSignature
	BlockFooter
)

func (k BlockKind) String() string {
	switch k {
	case BlockTitle:
		return "title"
	case BlockHeading:
		return "heading"
	case BlockParagraph:
		return "paragraph"
	case BlockList:
		return "list"
	case BlockTable:
		return "table"
	case BlockSpacer:
		return "spacer"
	case BlockSignature:
		return "signature"
	case BlockFooter:
		return "footer"
	default:
		return "unknown"
	}
}

// Block is one unit of agreement content. Text is used by titles,
// headings, paragraphs and the signature line; Items by lists and footers;
// Header and Rows by tables.
type Block struct {
	Kind   BlockKind
	Text   string
	Items  []string
	Header []string
	Rows   [][]string
}

// AgreementDocument is the backend-neutral content of the VAT agreement
type AgreementDocument struct {
	// Date is the formatted agreement date
	Date      string
	Blocks    []Block
	Signature *SignatureImage
}

// SectionTitles returns the heading texts in order
func (d *AgreementDocument) SectionTitles() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == BlockHeading {
			out = append(out, b.Text)
		}
	}
	return out
}

// Text returns every piece of visible text in order, one entry per line,
// paragraph, list item or table cell
func (d *AgreementDocument) Text() []string {
	var out []string
	for _, b := range d.Blocks {
		switch b.Kind {
		case BlockTitle, BlockHeading, BlockParagraph, BlockSignature:
			out = append(out, b.Text)
		case BlockList, BlockFooter:
			out = append(out, b.Items...)
		case BlockTable:
			out = append(out, b.Header...)
			for _, row := range b.Rows {
				out = append(out, row...)
			}
		}
	}
	return out
}

// BuildAgreement validates the fields and lays out the agreement content.
// An unparsable date yields a DateFormatError.
func BuildAgreement(f AgreementFields, signature *SignatureImage) (*AgreementDocument, error) {
	date, err := FormatAgreementDate(f.DateOfAgreement)
	if err != nil {
		return nil, err
	}
	return &AgreementDocument{
		Date:      date,
		Blocks:    agreementBlocks(f, date),
		Signature: signature,
	}, nil
}

// AgreementBackend renders an agreement into one output format
type AgreementBackend interface {
	// Format is the file extension of the output, "pdf" or "docx"
	Format() string
	Render(ctx context.Context, doc *AgreementDocument) ([]byte, error)
}

// Assembler turns field values into a rendered agreement with one backend
type Assembler struct {
	backend AgreementBackend
	now     func() time.Time
}

// NewAssembler creates an assembler for backend
func NewAssembler(backend AgreementBackend) *Assembler {
	return &Assembler{backend: backend, now: time.Now}
}

// Backend returns the assembler's backend
func (a *Assembler) Backend() AgreementBackend {
	return a.backend
}

// Assemble builds and renders the agreement. On error no artifact is
// returned.
func (a *Assembler) Assemble(ctx context.Context, fields Fields, signature *SignatureImage) (*Artifact, error) {
	doc, err := BuildAgreement(AgreementFieldsFrom(fields), signature)
	if err != nil {
		return nil, err
	}
	return a.AssembleDocument(ctx, doc)
}

// AssembleDocument renders an already built agreement
func (a *Assembler) AssembleDocument(ctx context.Context, doc *AgreementDocument) (*Artifact, error) {
	data, err := a.backend.Render(ctx, doc)
	if err != nil {
		return nil, err
	}
	format := a.backend.Format()
	return &Artifact{
		Name:         ArtifactName("agreement", a.now(), format),
		DownloadName: "vat_agreement." + format,
		ContentType:  ContentTypeFor(format),
		Format:       format,
		Data:         data,
	}, nil
}
