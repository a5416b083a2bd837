package docgen

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ValidatePDF parses and validates a PDF and returns its page count
func ValidatePDF(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty pdf")
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return ctx.PageCount, nil
}

// contentTextRe matches a font selection (group 1 is the resource name) or a
// string literal shown with Tj (group 2)
var contentTextRe = regexp.MustCompile(`/([^\s/\[\]()<>]+)\s+[-\d.]+\s+Tf|\(((?:\\.|[^\\)])*)\)\s*Tj`)

// PDFTextLines returns the strings shown on every page, in content stream
// order. Each Tj operand is one entry. Operands drawn with a composite font
// are decoded as two-byte Unicode codes, as written for embedded TrueType
// fonts.
func PDFTextLines(data []byte) ([]string, error) {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	var lines []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		composite, err := compositeFonts(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNr, err)
		}

		var wide bool
		for _, m := range contentTextRe.FindAllSubmatch(content, -1) {
			if m[1] != nil {
				wide = composite[string(m[1])]
				continue
			}
			text := unescapePDFString(string(m[2]))
			if wide {
				text = decodeUTF16BE(text)
			}
			lines = append(lines, text)
		}
	}
	return lines, nil
}

// compositeFonts reports which font resources of a page are Type0 fonts
func compositeFonts(ctx *model.Context, pageNr int) (map[string]bool, error) {
	pageDict, _, inherited, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, err
	}
	resources := inherited.Resources
	if obj, found := pageDict.Find("Resources"); found {
		if d, err := ctx.DereferenceDict(obj); err == nil && d != nil {
			resources = d
		}
	}
	out := make(map[string]bool)
	if resources == nil {
		return out, nil
	}
	obj, found := resources.Find("Font")
	if !found {
		return out, nil
	}
	fonts, err := ctx.DereferenceDict(obj)
	if err != nil || fonts == nil {
		return out, err
	}
	for name, ref := range fonts {
		font, err := ctx.DereferenceDict(ref)
		if err != nil {
			return nil, fmt.Errorf("font %s: %w", name, err)
		}
		if font == nil {
			continue
		}
		if subtype := font.Subtype(); subtype != nil && *subtype == "Type0" {
			out[name] = true
		}
	}
	return out, nil
}

func decodeUTF16BE(s string) string {
	b := []byte(s)
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units))
}

var pdfStringReplacer = strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\r`, "\r", `\n`, "\n")

func unescapePDFString(s string) string {
	return pdfStringReplacer.Replace(s)
}
