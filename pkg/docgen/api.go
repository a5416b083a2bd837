package docgen

import (
	"context"
	"runtime"
	"time"
)

// Generator produces documents from requests. Use New to create one. A
// Generator is safe for concurrent use; each call works on its own
// document objects and workspace.
type Generator struct {
	config    *Config
	log       *Logger
	now       func() time.Time
	counter   *InvoiceCounter
	converter Converter
	adapter   *ConversionAdapter
	backends  map[string]AgreementBackend
}

// Option configures a Generator
type Option func(*Generator)

// WithConfig returns an option that sets the configuration.
func WithConfig(config *Config) Option {
	return func(g *Generator) {
		g.config = config
	}
}

// WithLogger returns an option that sets the logger.
func WithLogger(log *Logger) Option {
	return func(g *Generator) {
		g.log = log
	}
}

// WithConverter returns an option that replaces the platform converter.
func WithConverter(c Converter) Option {
	return func(g *Generator) {
		g.converter = c
	}
}

// WithClock returns an option that sets the time source used for dates,
// artifact names and document metadata.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithCounter returns an option that sets the invoice number counter.
func WithCounter(counter *InvoiceCounter) Option {
	return func(g *Generator) {
		g.counter = counter
	}
}

// WithAgreementBackend returns an option that replaces the agreement
// backend for the backend's format.
func WithAgreementBackend(backend AgreementBackend) Option {
	return func(g *Generator) {
		if g.backends == nil {
			g.backends = map[string]AgreementBackend{}
		}
		g.backends[backend.Format()] = backend
	}
}

// New creates a generator. Without options it uses DefaultConfig, a no-op
// logger and the converter for the running platform.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		opt(g)
	}

	if g.config == nil {
		g.config = DefaultConfig()
	}
	if g.log == nil {
		g.log = NewNopLogger()
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.counter == nil {
		g.counter = NewInvoiceCounter(g.config.InvoiceStart)
	}
	if g.converter == nil {
		g.converter = DetectConverter(runtime.GOOS, g.config.Converter)
	}
	g.adapter = NewConversionAdapter(g.converter, g.config.Converter.Timeout, g.log)

	if g.backends == nil {
		g.backends = map[string]AgreementBackend{}
	}
	if _, ok := g.backends[FormatPDF]; !ok {
		g.backends[FormatPDF] = &PDFBackend{Compress: true, Now: g.now}
	}
	if _, ok := g.backends[FormatDOCX]; !ok {
		g.backends[FormatDOCX] = &DOCXBackend{Now: g.now}
	}
	return g
}

// Config returns the generator configuration
func (g *Generator) Config() *Config {
	return g.config
}

// Converter returns the DOCX to PDF converter in use
func (g *Generator) Converter() Converter {
	return g.converter
}

// Counter returns the invoice number counter
func (g *Generator) Counter() *InvoiceCounter {
	return g.counter
}

// Request asks for one document of any type
type Request struct {
	Type   DocumentType
	Fields Fields
	// Signature is an optional PNG or JPEG image
	Signature []byte
	// Formats lists the wanted outputs; empty means every available format
	Formats []string
}

// TemplateRequest asks for a template-based document
type TemplateRequest struct {
	Type      DocumentType
	Fields    Fields
	Signature []byte
	Formats   []string
}

// AgreementRequest asks for the VAT registration agreement
type AgreementRequest struct {
	Fields    Fields
	Signature []byte
	Formats   []string
}

// Generate dispatches req to the flow of its document type
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	spec, ok := Lookup(req.Type)
	if !ok {
		return nil, NewValidationError("type", "unknown document type "+string(req.Type))
	}
	if spec.Assembled {
		return g.GenerateAgreement(ctx, AgreementRequest{
			Fields:    req.Fields,
			Signature: req.Signature,
			Formats:   req.Formats,
		})
	}
	return g.GenerateFromTemplate(ctx, TemplateRequest{
		Type:      req.Type,
		Fields:    req.Fields,
		Signature: req.Signature,
		Formats:   req.Formats,
	})
}
