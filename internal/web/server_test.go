package web

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/benjaminschreck/go-docgen/pkg/docgen"
	docxml "github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// stubConverter writes a one page PDF, or fails with err
type stubConverter struct {
	err error
}

func (c *stubConverter) Name() string { return "stub" }

func (c *stubConverter) Convert(_ context.Context, docxPath, outDir string) (string, error) {
	if c.err != nil {
		return "", docgen.NewConversionError(c.Name(), docxPath, "", c.err)
	}
	base := strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))
	path := filepath.Join(outDir, base+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(40, 10, "converted")
	return path, pdf.OutputFileAndClose(path)
}

type testServer struct {
	server *Server
	config *docgen.Config
}

func newTestServer(t *testing.T, conv docgen.Converter, configure func(*docgen.Config)) *testServer {
	t.Helper()

	cfg := docgen.DefaultConfig()
	cfg.TemplateDir = t.TempDir()
	cfg.WorkDir = t.TempDir()
	if configure != nil {
		configure(cfg)
	}
	if conv == nil {
		conv = &stubConverter{}
	}
	gen := docgen.New(
		docgen.WithConfig(cfg),
		docgen.WithConverter(conv),
		docgen.WithClock(func() time.Time { return time.Date(2025, 3, 25, 10, 30, 0, 0, time.UTC) }),
	)
	s, err := NewServer(gen, nil)
	require.NoError(t, err)
	return &testServer{server: s, config: cfg}
}

// installTemplate writes a small template for t into the template directory
func (ts *testServer) installTemplate(t *testing.T, typ docgen.DocumentType, text string) {
	t.Helper()

	spec, ok := docgen.Lookup(typ)
	require.True(t, ok)

	pkg := docgen.NewPackage(spec.Title, time.Now())
	doc, err := pkg.Document()
	require.NoError(t, err)
	doc.Body.Add(docxml.NewParagraph("", text))
	data, err := pkg.Bytes()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(docgen.TemplatePath(ts.config.TemplateDir, spec), data, 0o600))
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (ts *testServer) post(t *testing.T, path string, fields map[string]string, signature []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if signature != nil {
		part, err := mw.CreateFormFile("signature", "signature.png")
		require.NoError(t, err)
		_, err = part.Write(signature)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(req)
}

func agreementForm() map[string]string {
	return map[string]string{
		docgen.FieldClientName:      "Acme FZE",
		docgen.FieldDateOfAgreement: "2025/03/25",
		docgen.FieldVATRegFee:       "500 BHD",
		docgen.FieldConsultancyFee:  "300 BHD",
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestIndexListsDocumentTypes(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	for _, spec := range docgen.Catalog() {
		assert.Contains(t, rec.Body.String(), spec.Title)
		assert.Contains(t, rec.Body.String(), `href="/documents/`+string(spec.Type)+`"`)
	}
}

func TestFormPrefillsDefaults(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.get("/documents/vat-agreement")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="2025/03/25"`)
	assert.Contains(t, body, `name="signature"`)
	assert.Contains(t, body, "Downloads: pdf, docx")
}

func TestFormOffersOnlyDOCXWithoutConversion(t *testing.T) {
	ts := newTestServer(t, nil, func(cfg *docgen.Config) { cfg.Convert = false })

	rec := ts.get("/documents/nda-india")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Downloads: docx</p>")
	assert.NotContains(t, rec.Body.String(), "Downloads: pdf")
}

func TestUnknownTypeIsNotFound(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	assert.Equal(t, http.StatusNotFound, ts.get("/documents/lease").Code)
	assert.Equal(t, http.StatusNotFound, ts.post(t, "/documents/lease", nil, nil).Code)
}

func TestGenerateAgreement(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	tests := []struct {
		format      string
		contentType string
		filename    string
		magic       string
	}{
		{docgen.FormatPDF, docgen.ContentTypePDF, "vat_agreement.pdf", "%PDF"},
		{docgen.FormatDOCX, docgen.ContentTypeDOCX, "vat_agreement.docx", "PK"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			form := agreementForm()
			form["format"] = tt.format

			rec := ts.post(t, "/documents/vat-agreement", form, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "attachment; filename="+tt.filename, rec.Header().Get("Content-Disposition"))
			assert.NotEmpty(t, rec.Header().Get("X-Document-Id"))
			assert.Equal(t, fmt.Sprint(rec.Body.Len()), rec.Header().Get("Content-Length"))
			assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte(tt.magic)))
		})
	}
}

// downloadRe matches a download link of the result page
var downloadRe = regexp.MustCompile(`href="data:([^;"]+);base64,([^"]+)" download="([^"]+)"`)

type resultDownload struct {
	contentType string
	filename    string
	data        []byte
}

func resultDownloads(t *testing.T, body string) []resultDownload {
	t.Helper()
	var out []resultDownload
	for _, m := range downloadRe.FindAllStringSubmatch(body, -1) {
		data, err := base64.StdEncoding.DecodeString(m[2])
		require.NoError(t, err)
		out = append(out, resultDownload{contentType: m[1], filename: html.UnescapeString(m[3]), data: data})
	}
	return out
}

func TestGenerateAgreementOffersBothFormats(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.post(t, "/documents/vat-agreement", agreementForm(), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Download PDF")
	assert.Contains(t, rec.Body.String(), "Download DOCX")

	downloads := resultDownloads(t, rec.Body.String())
	require.Len(t, downloads, 2)
	assert.Equal(t, docgen.ContentTypePDF, downloads[0].contentType)
	assert.Equal(t, "vat_agreement.pdf", downloads[0].filename)
	assert.True(t, bytes.HasPrefix(downloads[0].data, []byte("%PDF")))
	assert.Equal(t, docgen.ContentTypeDOCX, downloads[1].contentType)
	assert.Equal(t, "vat_agreement.docx", downloads[1].filename)
	assert.True(t, bytes.HasPrefix(downloads[1].data, []byte("PK")))
}

func TestGenerateInvoiceOnceForBothFormats(t *testing.T) {
	ts := newTestServer(t, nil, func(cfg *docgen.Config) { cfg.InvoiceStart = 4100 })
	ts.installTemplate(t, docgen.TypeInvoiceROW, "Invoice <<Invoice Number>>")

	rec := ts.post(t, "/documents/invoice-row", map[string]string{"client_name": "Acme FZE"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(4101), ts.server.gen.Counter().Last(), "one invoice number per submission")

	downloads := resultDownloads(t, rec.Body.String())
	require.Len(t, downloads, 2)
	assert.Equal(t, docgen.ContentTypePDF, downloads[0].contentType)
	assert.True(t, bytes.HasPrefix(downloads[0].data, []byte("%PDF")))

	pkg, err := docgen.OpenPackageBytes(downloads[1].data)
	require.NoError(t, err)
	part, ok := pkg.Part("word/document.xml")
	require.True(t, ok)
	assert.Contains(t, string(part), "Invoice 4101")
}

func TestGenerateAgreementBadDate(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	form := agreementForm()
	form[docgen.FieldDateOfAgreement] = "25/03/2025"
	rec := ts.post(t, "/documents/vat-agreement", form, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "date_of_agreement")
	assert.Contains(t, rec.Body.String(), `value="25/03/2025"`)
	assert.Contains(t, rec.Body.String(), `value="Acme FZE"`)
}

func TestGenerateInvalidFormat(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	form := agreementForm()
	form["format"] = "xls"
	rec := ts.post(t, "/documents/vat-agreement", form, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported format")
}

func TestGenerateFromTemplate(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.installTemplate(t, docgen.TypeNDAIndia, "Between <<Party A Name>> and <<Party B Name>> on <<Agreement Date>>")

	form := map[string]string{
		"party_a_name": "Acme FZE",
		"party_b_name": "Globex",
		"format":       docgen.FormatDOCX,
	}
	rec := ts.post(t, "/documents/nda-india", form, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docgen.ContentTypeDOCX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="NDA India_Generated.docx"`, rec.Header().Get("Content-Disposition"))

	pkg, err := docgen.OpenPackageBytes(rec.Body.Bytes())
	require.NoError(t, err)
	part, ok := pkg.Part("word/document.xml")
	require.True(t, ok)
	assert.Contains(t, string(part), "Between Acme FZE and Globex on 25-03-2025")
}

func TestGenerateFromTemplateAsPDF(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.installTemplate(t, docgen.TypeContractROW, "Consultant <<Consultant Name>>")

	rec := ts.post(t, "/documents/contract-row", map[string]string{
		"consultant_name": "Jane Roe",
		"format":          docgen.FormatPDF,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docgen.ContentTypePDF, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestGenerateErrorStatuses(t *testing.T) {
	tests := []struct {
		name      string
		converter docgen.Converter
		configure func(*docgen.Config)
		install   bool
		format    string
		want      int
		wantBody  string
	}{
		{
			name:     "missing template",
			format:   docgen.FormatDOCX,
			want:     http.StatusNotFound,
			wantBody: "not installed",
		},
		{
			name:      "conversion failure",
			converter: &stubConverter{err: errors.New("soffice crashed")},
			install:   true,
			format:    docgen.FormatPDF,
			want:      http.StatusBadGateway,
			wantBody:  "PDF conversion failed",
		},
		{
			name:      "pdf with conversion disabled",
			configure: func(cfg *docgen.Config) { cfg.Convert = false },
			install:   true,
			format:    docgen.FormatPDF,
			want:      http.StatusBadRequest,
			wantBody:  "pdf conversion is disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.converter, tt.configure)
			if tt.install {
				ts.installTemplate(t, docgen.TypeInvoiceROW, "Invoice <<Invoice Number>>")
			}

			rec := ts.post(t, "/documents/invoice-row", map[string]string{
				"client_name": "Acme FZE",
				"format":      tt.format,
			}, nil)
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)

			entries, err := os.ReadDir(ts.config.WorkDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "workspace left behind")
		})
	}
}

func TestGenerateUploadTooLarge(t *testing.T) {
	ts := newTestServer(t, nil, func(cfg *docgen.Config) { cfg.MaxUploadMB = 1 })

	big := make([]byte, 2<<20)
	_, err := rand.Read(big)
	require.NoError(t, err)

	rec := ts.post(t, "/documents/vat-agreement", agreementForm(), big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 MB")
}

func TestGenerateAcceptsURLEncodedForm(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	body := strings.NewReader("client_name=Acme+FZE&date_of_agreement=2025%2F03%2F25&format=docx")
	req := httptest.NewRequest(http.MethodPost, "/documents/vat-agreement", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, docgen.ContentTypeDOCX, rec.Header().Get("Content-Type"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{docgen.NewMissingTemplateError(docgen.TypeNDAROW, "x.docx"), http.StatusNotFound},
		{docgen.NewDateFormatError("date_of_agreement", "bad", "2006/01/02", nil), http.StatusBadRequest},
		{docgen.NewValidationError("format", "bad"), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", docgen.NewConversionError("stub", "a.docx", "", errors.New("x"))), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &docgen.Logger{SugaredLogger: zap.New(core).Sugar()}

	cfg := docgen.DefaultConfig()
	cfg.WorkDir = t.TempDir()
	s, err := NewServer(docgen.New(docgen.WithConfig(cfg)), log)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, http.MethodGet, fields["method"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}
