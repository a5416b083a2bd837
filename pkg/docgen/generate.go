package docgen

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenerateFromTemplate fills the Word template of req.Type and returns the
// DOCX and, when conversion is enabled, the PDF. A missing template fails
// before any other work and nothing is written.
func (g *Generator) GenerateFromTemplate(ctx context.Context, req TemplateRequest) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, RecoverError(r)
		}
	}()

	spec, ok := Lookup(req.Type)
	if !ok {
		return nil, NewValidationError("type", "unknown document type "+string(req.Type))
	}
	if spec.Assembled {
		return nil, NewValidationError("type", string(req.Type)+" is not a template document")
	}

	log := g.log.With("type", spec.Type)
	start := g.now()

	pkg, err := LoadTemplate(g.config.TemplateDir, spec)
	if err != nil {
		log.Error("template unavailable", "error", err)
		return nil, err
	}

	formats, err := g.formats(req.Formats, g.config.Convert)
	if err != nil {
		return nil, err
	}

	var signature *SignatureImage
	if spec.Signature {
		signature, err = PrepareSignature(req.Signature, g.config.Signature.MaxWidth, g.config.Signature.MaxHeight)
		if err != nil {
			return nil, err
		}
	}

	ph := BuildPlaceholders(spec, req.Fields, BuildEnv{Now: g.now, Counter: g.counter})
	count, err := FillTemplate(pkg, ph)
	if err != nil {
		return nil, WithContext(err, "fill template", map[string]interface{}{"type": spec.Type})
	}
	log.Debug("substituted placeholders", "tokens", ph.Len(), "replacements", count)

	if spec.Signature {
		placed, err := PlaceSignature(pkg, signature)
		if err != nil {
			return nil, WithContext(err, "place signature", map[string]interface{}{"type": spec.Type})
		}
		log.Debug("placed signature", "tokens", placed, "image", signature != nil)
	}

	docx, err := pkg.Bytes()
	if err != nil {
		return nil, NewDocumentError("write", TemplatePath(g.config.TemplateDir, spec), err)
	}

	res = &Result{
		ID:           uuid.New(),
		Type:         spec.Type,
		CreatedAt:    start,
		Replacements: count,
	}
	base := strings.ReplaceAll(string(spec.Type), "-", "_")
	for _, format := range formats {
		data := docx
		if format == FormatPDF {
			data, err = g.convertDOCX(ctx, docx)
			if err != nil {
				return nil, err
			}
		}
		res.Artifacts = append(res.Artifacts, &Artifact{
			Name:         ArtifactName(base, start, format),
			DownloadName: spec.DownloadName(format),
			ContentType:  ContentTypeFor(format),
			Format:       format,
			Data:         data,
		})
	}

	log.Info("generated document",
		"id", res.ID,
		"formats", res.Formats(),
		"replacements", count,
		"duration", time.Since(start))
	return res, nil
}

// convertDOCX converts docx to PDF inside a fresh workspace. The workspace
// is removed on every path.
func (g *Generator) convertDOCX(ctx context.Context, docx []byte) ([]byte, error) {
	ws, err := NewWorkspace(g.config.WorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			g.log.Warn("workspace cleanup failed", "dir", ws.Dir(), "error", cerr)
		}
	}()

	path, err := ws.WriteFile("document.docx", docx)
	if err != nil {
		return nil, err
	}
	pdfPath, err := g.adapter.Convert(ctx, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, NewConversionError(g.converter.Name(), path, "", err)
	}
	return data, nil
}

// GenerateAgreement builds the VAT registration agreement and renders it
// with every requested backend concurrently. If any backend fails no
// artifact is returned.
func (g *Generator) GenerateAgreement(ctx context.Context, req AgreementRequest) (*Result, error) {
	formats, err := g.formats(req.Formats, true)
	if err != nil {
		return nil, err
	}

	signature, err := PrepareSignature(req.Signature, g.config.Signature.MaxWidth, g.config.Signature.MaxHeight)
	if err != nil {
		return nil, err
	}

	doc, err := BuildAgreement(AgreementFieldsFrom(req.Fields), signature)
	if err != nil {
		g.log.Warn("agreement rejected", "error", err)
		return nil, err
	}

	start := g.now()
	artifacts := make([]*Artifact, len(formats))
	eg, egctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		i, format := i, format
		backend, ok := g.backends[format]
		if !ok {
			return nil, NewValidationError("format", fmt.Sprintf("no agreement backend for %q", format))
		}
		asm := &Assembler{backend: backend, now: g.now}
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = RecoverError(r)
				}
			}()
			artifact, err := asm.AssembleDocument(egctx, doc)
			if err != nil {
				return WithContext(err, "render agreement", map[string]interface{}{"format": format})
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		g.log.Error("agreement rendering failed", "error", err)
		return nil, err
	}

	res := &Result{
		ID:        uuid.New(),
		Type:      TypeVATAgreement,
		CreatedAt: start,
		Artifacts: artifacts,
	}
	g.log.Info("generated document",
		"type", TypeVATAgreement,
		"id", res.ID,
		"formats", res.Formats(),
		"duration", time.Since(start))
	return res, nil
}

// formats resolves the requested output formats. PDF is only available
// when pdf is true.
func (g *Generator) formats(requested []string, pdf bool) ([]string, error) {
	explicit := len(requested) > 0
	formats, err := ParseFormats(strings.Join(requested, ","))
	if err != nil {
		return nil, err
	}
	if pdf {
		return formats, nil
	}

	out := formats[:0]
	for _, f := range formats {
		if f == FormatPDF {
			if explicit {
				return nil, NewValidationError("format", "pdf conversion is disabled")
			}
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
