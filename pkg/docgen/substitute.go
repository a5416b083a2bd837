package docgen

import (
	"github.com/benjaminschreck/go-docgen/pkg/docgen/render"
	"github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// Substitute replaces every mapped token in the document body, tables and
// nested tables included, and returns the same document. Tokens are applied
// in placeholder order, so a value that itself contains a later token is
// substituted again; substitution is not idempotent.
func Substitute(doc *xml.Document, ph *Placeholders) *xml.Document {
	if doc == nil || doc.Body == nil {
		return doc
	}
	substituteElements(doc.Body.Elements, ph)
	return doc
}

// SubstitutePart replaces mapped tokens in a header or footer part
func SubstitutePart(part *xml.HeaderFooter, ph *Placeholders) int {
	if part == nil {
		return 0
	}
	return substituteElements(part.Elements, ph)
}

// CountReplacements substitutes doc like Substitute and returns the number
// of occurrences replaced
func CountReplacements(doc *xml.Document, ph *Placeholders) int {
	if doc == nil || doc.Body == nil {
		return 0
	}
	return substituteElements(doc.Body.Elements, ph)
}

func substituteElements(elems []xml.BodyElement, ph *Placeholders) int {
	count := 0
	for _, para := range xml.Paragraphs(elems) {
		count += substituteParagraph(para, ph)
	}
	return count
}

func substituteParagraph(para *xml.Paragraph, ph *Placeholders) int {
	count := 0
	merged := false
	ph.Each(func(token, value string) {
		if !render.ContainsText(para, token) {
			return
		}
		if !merged {
			// Fewer runs means fewer split tokens and cleaner output
			render.MergeConsecutiveRuns(para)
			merged = true
		}
		count += render.ReplaceText(para, token, value)
	})
	return count
}
