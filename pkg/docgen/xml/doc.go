// Package xml provides the WordprocessingML structures used to read, edit
// and write the main document, header and footer parts of a DOCX package.
//
// # Structure Organization
//
//   - types.go: core interfaces, RawXMLElement and namespace handling
//   - document.go: Document, Body, HeaderFooter, parse/marshal entry points
//   - paragraph.go: Paragraph, ParagraphProperties, Hyperlink
//   - run.go: Run, RunProperties, Text and Break
//   - table.go: Table, TableRow, TableCell and their properties
//   - drawing.go: inline pictures and section properties for built documents
//   - wrapper.go: content controls, tracked insertions and other wrappers
//     whose text takes part in substitution
//
// # Preservation
//
// Only the elements needed to read and rewrite text are modeled. Anything
// else (bookmarks, drawings, fields, section properties, property blocks of
// parsed documents) is captured as a RawXMLElement token stream and written
// back unchanged, with the prefixes the source part declared. Property
// structs carry a Raw field: when set it wins over the typed fields, which
// are then read-only views of it.
//
// Builders (NewDocument, NewParagraph, NewTable, NewTableCell) produce typed
// elements that marshal with the conventional w: prefix:
//
//	doc := xml.NewDocument()
//	doc.Body.Add(xml.NewParagraph("Heading2", "Introduction:"))
//	data, err := xml.MarshalDocument(doc)
package xml
