package web

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/benjaminschreck/go-docgen/pkg/docgen"
)

type indexPage struct {
	Specs []docgen.DocumentSpec
}

type formPage struct {
	Spec    docgen.DocumentSpec
	Fields  []docgen.Field
	Values  docgen.Fields
	Formats []string
	Error   string
	Issues  []docgen.ValidationIssue
	// Unplaced are issues with no input field to show them next to
	Unplaced []docgen.ValidationIssue
}

// resultPage offers every artifact of one generation for download
type resultPage struct {
	Spec      docgen.DocumentSpec
	ID        string
	Downloads []download
}

type download struct {
	Label    string
	Filename string
	Size     string
	URL      template.URL
}

type errorPage struct {
	Status  int
	Title   string
	Message string
	Back    string
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexPage{Specs: docgen.Catalog()})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.render(w, http.StatusOK, "form.html", s.newFormPage(spec, spec.Defaults()))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.lookup(w, r)
	if !ok {
		return
	}

	limit := s.gen.Config().MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			s.badForm(w, r, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.badForm(w, r, err)
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	values := docgen.Fields{}
	for _, f := range spec.InputFields() {
		values[f.Key] = r.FormValue(f.Key)
	}
	page := s.newFormPage(spec, values)

	// Without an explicit format every offered format comes from one
	// generation, so both downloads carry the same invoice number.
	formats := page.Formats
	format := strings.ToLower(strings.TrimSpace(r.FormValue("format")))
	if format != "" {
		var err error
		formats, err = docgen.ParseFormats(format)
		if err == nil && len(formats) != 1 {
			err = docgen.NewValidationError("format", "choose one of pdf or docx")
		}
		if err != nil {
			s.fail(w, r, page, err)
			return
		}
	}

	signature, err := formSignature(r)
	if err != nil {
		s.badForm(w, r, err)
		return
	}

	res, err := s.gen.Generate(r.Context(), docgen.Request{
		Type:      spec.Type,
		Fields:    values,
		Signature: signature,
		Formats:   formats,
	})
	if err != nil {
		s.fail(w, r, page, err)
		return
	}

	s.log.Info("document served",
		"request_id", middleware.GetReqID(r.Context()),
		"type", string(spec.Type),
		"id", res.ID.String(),
		"formats", res.Formats(),
	)
	if format == "" {
		s.render(w, http.StatusOK, "result.html", newResultPage(spec, res))
		return
	}

	artifact, ok := res.Artifact(formats[0])
	if !ok {
		s.fail(w, r, page, errors.New("no "+formats[0]+" output produced"))
		return
	}
	h := w.Header()
	h.Set("Content-Type", artifact.ContentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.DownloadName}))
	h.Set("Content-Length", strconv.Itoa(artifact.Size()))
	h.Set("X-Document-Id", res.ID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// newResultPage embeds the artifacts as data URLs, so the page needs no
// server-side storage
func newResultPage(spec docgen.DocumentSpec, res *docgen.Result) resultPage {
	page := resultPage{Spec: spec, ID: res.ID.String()}
	for _, a := range res.Artifacts {
		page.Downloads = append(page.Downloads, download{
			Label:    strings.ToUpper(a.Format),
			Filename: a.DownloadName,
			Size:     humanize.Bytes(uint64(a.Size())),
			URL:      template.URL("data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)),
		})
	}
	return page
}

// lookup resolves the {type} URL parameter, answering 404 when unknown
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (docgen.DocumentSpec, bool) {
	t, err := docgen.ParseDocumentType(chi.URLParam(r, "type"))
	if err == nil {
		if spec, ok := docgen.Lookup(t); ok {
			return spec, true
		}
	}
	s.render(w, http.StatusNotFound, "error.html", errorPage{
		Status:  http.StatusNotFound,
		Title:   "Unknown document type",
		Message: "There is no document type called " + strconv.Quote(chi.URLParam(r, "type")) + ".",
		Back:    "/",
	})
	return docgen.DocumentSpec{}, false
}

func (s *Server) newFormPage(spec docgen.DocumentSpec, values docgen.Fields) formPage {
	formats := s.formatsFor(spec)
	return formPage{
		Spec:    spec,
		Fields:  spec.InputFields(),
		Values:  values,
		Formats: formats,
	}
}

// formatsFor lists the downloadable formats of spec, preferred first.
// Template documents are only offered as PDF when conversion is enabled.
func (s *Server) formatsFor(spec docgen.DocumentSpec) []string {
	if spec.Assembled || s.gen.Config().Convert {
		return []string{docgen.FormatPDF, docgen.FormatDOCX}
	}
	return []string{docgen.FormatDOCX}
}

// fail answers a generation error. Input errors re-render the form with
// the message; everything else gets an error page.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, page formPage, err error) {
	status := statusFor(err)
	log := s.log.With(
		"request_id", middleware.GetReqID(r.Context()),
		"type", string(page.Spec.Type),
		"status", status,
		"error", err,
	)
	if status >= http.StatusInternalServerError {
		log.Error("generation failed")
	} else {
		log.Warn("generation rejected")
	}

	back := "/documents/" + string(page.Spec.Type)
	switch status {
	case http.StatusBadRequest:
		page.Error = err.Error()
		var verr *docgen.ValidationError
		if errors.As(err, &verr) {
			page.Error = "Please correct the highlighted fields."
			page.Issues = verr.Issues
			page.Unplaced = unplacedIssues(page.Fields, verr.Issues)
		}
		s.render(w, status, "form.html", page)
	case http.StatusNotFound:
		s.render(w, status, "error.html", errorPage{
			Status:  status,
			Title:   "Template not available",
			Message: "The Word template for " + page.Spec.Title + " is not installed.",
			Back:    back,
		})
	case http.StatusBadGateway:
		s.render(w, status, "error.html", errorPage{
			Status:  status,
			Title:   "PDF conversion failed",
			Message: "The document could not be converted to PDF. Request the DOCX format alone to skip conversion.",
			Back:    back,
		})
	default:
		s.render(w, status, "error.html", errorPage{
			Status:  status,
			Title:   "Generation failed",
			Message: "The document could not be generated.",
			Back:    back,
		})
	}
}

func (s *Server) badForm(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadRequest
	msg := "The submitted form could not be read."
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
		msg = "The upload exceeds the limit of " + strconv.FormatInt(tooLarge.Limit>>20, 10) + " MB."
	}
	s.log.Warn("bad form",
		"request_id", middleware.GetReqID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	)
	s.render(w, status, "error.html", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: msg,
		Back:    r.URL.Path,
	})
}

// statusFor maps a generation error to an HTTP status
func statusFor(err error) int {
	switch {
	case docgen.IsMissingTemplateError(err):
		return http.StatusNotFound
	case docgen.IsDateFormatError(err), docgen.IsValidationError(err):
		return http.StatusBadRequest
	case docgen.IsConversionError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// formSignature reads the optional signature upload
func formSignature(r *http.Request) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, _, err := r.FormFile("signature")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func fieldValue(values docgen.Fields, key string) string {
	return values.Get(key)
}

// issueFor returns the validation message of field key, if any
func issueFor(issues []docgen.ValidationIssue, key string) string {
	for _, issue := range issues {
		if issue.Field == key {
			return issue.Message
		}
	}
	return ""
}

// unplacedIssues returns the issues that belong to no input field
func unplacedIssues(fields []docgen.Field, issues []docgen.ValidationIssue) []docgen.ValidationIssue {
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		keys[f.Key] = true
	}
	var out []docgen.ValidationIssue
	for _, issue := range issues {
		if !keys[issue.Field] {
			out = append(out, issue)
		}
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
