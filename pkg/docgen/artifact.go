package docgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Output formats
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
)

// Content types of the output formats
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ContentTypeFor returns the content type of format
func ContentTypeFor(format string) string {
	switch format {
	case FormatPDF:
		return ContentTypePDF
	case FormatDOCX:
		return ContentTypeDOCX
	default:
		return "application/octet-stream"
	}
}

// ParseFormats splits a comma separated format list such as "pdf,docx".
// An empty list means both formats.
func ParseFormats(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return []string{FormatPDF, FormatDOCX}, nil
	}
	var out []string
	seen := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		switch f {
		case FormatPDF, FormatDOCX:
		default:
			return nil, NewValidationError("format", fmt.Sprintf("unsupported format %q", part))
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Artifact is one generated file, held in memory
type Artifact struct {
	// Name is unique per generation: base, timestamp and an id fragment
	Name string
	// DownloadName is the fixed user-facing file name
	DownloadName string
	ContentType  string
	Format       string
	Data         []byte
}

// Size returns the artifact size in bytes
func (a *Artifact) Size() int {
	return len(a.Data)
}

// ArtifactName builds base_YYYYmmdd_HHMMSS_<id8>.ext
func ArtifactName(base string, t time.Time, ext string) string {
	id := uuid.NewString()
	return fmt.Sprintf("%s_%s_%s.%s", base, t.Format("20060102_150405"), id[:8], ext)
}

// Result is the outcome of one generation call
type Result struct {
	ID        uuid.UUID
	Type      DocumentType
	CreatedAt time.Time
	Artifacts []*Artifact
	// Replacements counts substituted placeholder occurrences
	Replacements int
}

// Artifact returns the artifact of format, if any
func (r *Result) Artifact(format string) (*Artifact, bool) {
	for _, a := range r.Artifacts {
		if a.Format == format {
			return a, true
		}
	}
	return nil, false
}

// Formats lists the formats present in the result
func (r *Result) Formats() []string {
	out := make([]string, 0, len(r.Artifacts))
	for _, a := range r.Artifacts {
		out = append(out, a.Format)
	}
	return out
}
