package docgen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/benjaminschreck/go-docgen/pkg/docgen/render"
	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// SignatureToken marks where a signature image goes in a template
const SignatureToken = "<<Signature>>"

// TemplatePath resolves the template file of spec under dir
func TemplatePath(dir string, spec DocumentSpec) string {
	return filepath.Join(dir, spec.Template)
}

// LoadTemplate opens the template of spec from dir. A missing file yields
// a MissingTemplateError.
func LoadTemplate(dir string, spec DocumentSpec) (*Package, error) {
	path := TemplatePath(dir, spec)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return nil, NewMissingTemplateError(spec.Type, path)
	}
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}

	pkg, err := OpenPackageFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	return pkg, nil
}

// FillTemplate substitutes ph into the document, headers and footers of pkg
// and returns the number of replacements
func FillTemplate(pkg *Package, ph *Placeholders) (int, error) {
	doc, err := pkg.Document()
	if err != nil {
		return 0, err
	}
	count := CountReplacements(doc, ph)

	parts, err := pkg.HeaderFooters()
	if err != nil {
		return count, err
	}
	for _, part := range parts {
		count += SubstitutePart(part, ph)
	}
	return count, nil
}

// PlaceSignature replaces every signature token in the main document with
// the image. A nil image removes the tokens. It returns the number of
// tokens handled.
func PlaceSignature(pkg *Package, img *SignatureImage) (int, error) {
	doc, err := pkg.Document()
	if err != nil {
		return 0, err
	}

	var targets []*docxml.Paragraph
	for _, para := range docxml.Paragraphs(doc.Body.Elements) {
		if render.ContainsText(para, SignatureToken) {
			targets = append(targets, para)
		}
	}
	if len(targets) == 0 {
		return 0, nil
	}

	relID := ""
	if img != nil {
		relID, err = pkg.AddImage(img.PNG)
		if err != nil {
			return 0, err
		}
		doc.EnsureNamespace("r", docxml.NamespaceRelationships)
		doc.EnsureNamespace("wp", docxml.NamespaceDrawing)
	}

	count := 0
	for i, para := range targets {
		count += render.ReplaceText(para, SignatureToken, "")
		if img != nil {
			para.AddRun(docxml.NewInlineImage(relID, 1000+i, "signature.png", img.Width, img.Height))
		}
	}
	return count, nil
}
