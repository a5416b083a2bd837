// Package docgen generates legal and commercial documents from form field
// values and produces downloadable Word and PDF files.
//
// Two flows exist. Template documents (invoices, NDAs, contracts) load a
// Word template, substitute its <<Token>> placeholders and convert the
// result to PDF with an external converter. The VAT registration agreement
// is assembled from fixed clause text and rendered by two backends, one
// page-flow PDF and one structured DOCX, that share a single content source.
//
// # Quick Start
//
//	gen := docgen.New(docgen.WithConfig(cfg), docgen.WithLogger(log))
//
//	res, err := gen.Generate(ctx, docgen.Request{
//	    Type: docgen.TypeVATAgreement,
//	    Fields: docgen.Fields{
//	        "client_name":       "Acme FZE",
//	        "date_of_agreement": "2025/03/25",
//	        "vat_reg_fee":       "500 BHD",
//	        "consultancy_fee":   "300 BHD",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pdf, _ := res.Artifact(docgen.FormatPDF)
//	os.WriteFile(pdf.DownloadName, pdf.Data, 0644)
//
// # Placeholders
//
// Tokens are literal <<Name>> markers matched by exact substring, with no
// escaping and no nesting. Tokens are replaced in placeholder order across
// the visible text of every paragraph, including paragraphs inside nested
// tables, headers and footers. A token split over several runs is replaced
// as one and the value keeps the formatting of the run where the token
// begins. Unmapped tokens stay in the output.
//
// Substitution is not idempotent: a value that contains a later token is
// itself substituted.
//
// # Errors
//
// Failures are returned as typed errors that work with errors.As:
//
//   - MissingTemplateError: the template file of the requested type is absent
//   - DateFormatError: the agreement date is not YYYY/MM/DD
//   - ConversionError: the DOCX to PDF converter failed or produced no valid PDF
//   - ValidationError: the request itself is invalid
//
// No partial output is ever returned with an error.
//
// # Conversion
//
// DetectConverter picks Word automation on Windows and a headless
// libreoffice subprocess elsewhere. ConversionAdapter bounds each
// conversion with a timeout and checks that the output is a valid PDF.
package docgen
