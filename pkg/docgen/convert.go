package docgen

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Converter turns a DOCX file into a PDF written to outDir and returns the
// PDF path
type Converter interface {
	Name() string
	Convert(ctx context.Context, docxPath, outDir string) (string, error)
}

// pdfPathFor is where converters put the PDF for docxPath
func pdfPathFor(docxPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	return filepath.Join(outDir, base+".pdf")
}

// SubprocessConverter converts with a headless office suite binary such as
// libreoffice or soffice
type SubprocessConverter struct {
	Binary string
	// Args are passed before the conversion arguments
	Args []string
}

// NewSubprocessConverter creates a converter running binary
func NewSubprocessConverter(binary string) *SubprocessConverter {
	return &SubprocessConverter{Binary: binary}
}

func (c *SubprocessConverter) Name() string {
	return "subprocess:" + filepath.Base(c.Binary)
}

// Convert runs <binary> --headless --convert-to pdf --outdir <outDir> <docxPath>.
// Each call uses its own profile directory so concurrent conversions do
// not contend for the profile lock.
func (c *SubprocessConverter) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	profile, err := fileURL(filepath.Join(outDir, ".profile"))
	if err != nil {
		return "", NewConversionError(c.Name(), docxPath, "", err)
	}
	args := append([]string{}, c.Args...)
	args = append(args,
		"-env:UserInstallation="+profile,
		"--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return "", NewConversionError(c.Name(), docxPath, string(out), err)
	}
	return pdfPathFor(docxPath, outDir), nil
}

// fileURL turns a path, relative or not, into an absolute file:// URL
func fileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String(), nil
}

// AutomationConverter drives Microsoft Word through COM automation. It is
// only functional on Windows.
type AutomationConverter struct {
	// ProgID is the automation server, "Word.Application" by default
	ProgID string
}

// wdFormatPDF is Word's SaveAs file format code for PDF
const wdFormatPDF = 17

func (c *AutomationConverter) Name() string {
	return "automation:" + c.progID()
}

func (c *AutomationConverter) progID() string {
	if c.ProgID == "" {
		return "Word.Application"
	}
	return c.ProgID
}

// Convert opens the document in Word and saves it as PDF
func (c *AutomationConverter) Convert(ctx context.Context, docxPath, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewConversionError(c.Name(), docxPath, "", err)
	}
	absDocx, err := filepath.Abs(docxPath)
	if err != nil {
		return "", NewConversionError(c.Name(), docxPath, "", err)
	}
	pdfPath, err := filepath.Abs(pdfPathFor(docxPath, outDir))
	if err != nil {
		return "", NewConversionError(c.Name(), docxPath, "", err)
	}
	if err := c.saveAsPDF(absDocx, pdfPath); err != nil {
		return "", NewConversionError(c.Name(), docxPath, "", err)
	}
	return pdfPath, nil
}

// DetectConverter picks the converter for the platform goos, unless the
// configuration forces a backend
func DetectConverter(goos string, cfg ConverterConfig) Converter {
	switch cfg.Backend {
	case BackendAutomation:
		return &AutomationConverter{}
	case BackendSubprocess:
		return NewSubprocessConverter(cfg.Binary)
	}
	if goos == "windows" {
		return &AutomationConverter{}
	}
	return NewSubprocessConverter(cfg.Binary)
}

// ConversionAdapter wraps a Converter with a timeout and output checks. A
// failed conversion never leaves a PDF behind.
type ConversionAdapter struct {
	converter Converter
	timeout   time.Duration
	log       *Logger
}

// NewConversionAdapter creates an adapter. A zero timeout disables it.
func NewConversionAdapter(converter Converter, timeout time.Duration, log *Logger) *ConversionAdapter {
	if log == nil {
		log = NewNopLogger()
	}
	return &ConversionAdapter{converter: converter, timeout: timeout, log: log}
}

// Converter returns the wrapped converter
func (a *ConversionAdapter) Converter() Converter {
	return a.converter
}

// Convert converts docxPath into a PDF next to it and returns the PDF path.
// The output must exist, be non-empty and parse as a PDF.
func (a *ConversionAdapter) Convert(ctx context.Context, docxPath string) (string, error) {
	name := a.converter.Name()
	outDir := filepath.Dir(docxPath)
	expected := pdfPathFor(docxPath, outDir)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	pdfPath, err := a.converter.Convert(ctx, docxPath, outDir)
	if pdfPath == "" {
		pdfPath = expected
	}
	if err != nil {
		removePartial(pdfPath)
		a.log.Error("conversion failed", "converter", name, "path", docxPath, "error", err)
		var convErr *ConversionError
		if errors.As(err, &convErr) {
			return "", err
		}
		return "", NewConversionError(name, docxPath, "", err)
	}

	if err := checkPDF(pdfPath); err != nil {
		removePartial(pdfPath)
		a.log.Error("conversion produced no usable pdf", "converter", name, "path", docxPath, "error", err)
		return "", NewConversionError(name, docxPath, "", err)
	}

	a.log.Info("converted document", "converter", name, "path", docxPath, "duration", time.Since(start))
	return pdfPath, nil
}

func checkPDF(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return errors.New("no output produced")
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("output is empty")
	}
	if _, err := ValidatePDF(data); err != nil {
		return fmt.Errorf("output is not a valid pdf: %w", err)
	}
	return nil
}

func removePartial(path string) {
	_ = os.Remove(path)
}
