package render

import (
	"reflect"

	"github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// runPropertiesEquivalent checks if two run properties are equivalent for merging purposes
// This is important to preserve formatting like bold, italic, etc.
func runPropertiesEquivalent(p1, p2 *xml.RunProperties) bool {
	if p1 == nil && p2 == nil {
		return true
	}
	if (p1 == nil) != (p2 == nil) {
		return false
	}
	// Parsed properties compare by their preserved token stream
	return reflect.DeepEqual(p1, p2)
}

// MergeConsecutiveRuns merges adjacent text-only runs that share the same
// formatting. Word splits text into runs for spell-check and revision
// bookkeeping; merging leaves the rendered paragraph unchanged. Hyperlink
// and wrapper boundaries (tracked insertions, content controls) are kept.
func MergeConsecutiveRuns(para *xml.Paragraph) {
	para.Content = mergeNested(para.Content)
}

func mergeNested(content []xml.ParagraphContent) []xml.ParagraphContent {
	for _, c := range content {
		switch c := c.(type) {
		case *xml.Hyperlink:
			c.Content = mergeNested(c.Content)
		case *xml.InlineWrapper:
			c.Content = mergeNested(c.Content)
		}
	}
	return mergeContent(content)
}

func mergeContent(content []xml.ParagraphContent) []xml.ParagraphContent {
	if len(content) <= 1 {
		return content
	}

	merged := make([]xml.ParagraphContent, 0, len(content))
	var current *xml.Run

	for _, c := range content {
		run, ok := c.(*xml.Run)
		if !ok {
			current = nil
			merged = append(merged, c)
			continue
		}

		if current != nil && run.TextOnly() && len(run.Content) > 0 && runPropertiesEquivalent(run.Properties, current.Properties) {
			appendText(current, run)
			continue
		}

		merged = append(merged, run)
		current = nil
		if run.TextOnly() && len(run.Content) > 0 {
			current = run
		}
	}

	return merged
}

// appendText moves the text of src onto the last text element of dst
func appendText(dst, src *xml.Run) {
	last := dst.Content[len(dst.Content)-1].(*xml.Text)
	for _, c := range src.Content {
		t := c.(*xml.Text)
		last.Value += t.Value
		// Preserve xml:space="preserve" if either run has it
		if t.Space == "preserve" {
			last.Space = "preserve"
		}
	}
	last.Set(last.Value)
}
