package docgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPdfPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "document.pdf"), pdfPathFor(filepath.Join("in", "document.docx"), "out"))
	assert.Equal(t, filepath.Join("out", "NDA Template - ROW 4.pdf"), pdfPathFor("NDA Template - ROW 4.docx", "out"))
}

func TestDetectConverter(t *testing.T) {
	tests := []struct {
		name     string
		goos     string
		backend  string
		wantName string
	}{
		{name: "linux auto", goos: "linux", backend: BackendAuto, wantName: "subprocess:libreoffice"},
		{name: "darwin auto", goos: "darwin", backend: BackendAuto, wantName: "subprocess:libreoffice"},
		{name: "windows auto", goos: "windows", backend: BackendAuto, wantName: "automation:Word.Application"},
		{name: "forced subprocess on windows", goos: "windows", backend: BackendSubprocess, wantName: "subprocess:libreoffice"},
		{name: "forced automation on linux", goos: "linux", backend: BackendAutomation, wantName: "automation:Word.Application"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig().Converter
			cfg.Backend = tt.backend
			c := DetectConverter(tt.goos, cfg)
			assert.Equal(t, tt.wantName, c.Name())
		})
	}
}

// writeScript creates an executable shell script standing in for the
// office suite binary
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-office")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

const copyPDFScript = `
out=""
while [ $# -gt 1 ]; do
  if [ "$1" = "--outdir" ]; then out="$2"; fi
  shift
done
base=$(basename "$1" .docx)
cp "$FAKE_PDF" "$out/$base.pdf"
echo "convert $1 -> $out/$base.pdf using filter : writer_pdf_Export"
`

func TestSubprocessConverter(t *testing.T) {
	script := writeScript(t, copyPDFScript)
	src := filepath.Join(t.TempDir(), "source.pdf")
	require.NoError(t, os.WriteFile(src, testPDF(t), 0o600))
	t.Setenv("FAKE_PDF", src)

	dir := t.TempDir()
	docx := filepath.Join(dir, "document.docx")
	require.NoError(t, os.WriteFile(docx, []byte("docx"), 0o600))

	c := NewSubprocessConverter(script)
	assert.Equal(t, "subprocess:fake-office", c.Name())

	pdfPath, err := c.Convert(context.Background(), docx, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "document.pdf"), pdfPath)
	assert.FileExists(t, pdfPath)
}

func TestSubprocessConverterRelativeProfile(t *testing.T) {
	script := writeScript(t, `
for arg in "$@"; do
  case "$arg" in -env:UserInstallation=*) echo "$arg" ;; esac
done
exit 1
`)
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = NewSubprocessConverter(script).Convert(context.Background(), "document.docx", "work")

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	want, err := fileURL(filepath.Join(dir, "work", ".profile"))
	require.NoError(t, err)
	assert.Equal(t, "-env:UserInstallation="+want, strings.TrimSpace(convErr.Output))
	assert.True(t, strings.HasPrefix(want, "file:///"), want)
}

func TestFileURL(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	got, err := fileURL("/srv/docgen/work dir/.profile")
	require.NoError(t, err)
	assert.Equal(t, "file:///srv/docgen/work%20dir/.profile", got)
}

func TestSubprocessConverterFailure(t *testing.T) {
	script := writeScript(t, "echo 'Error: source file could not be loaded' >&2\nexit 1\n")
	dir := t.TempDir()

	_, err := NewSubprocessConverter(script).Convert(context.Background(), filepath.Join(dir, "document.docx"), dir)

	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Output, "source file could not be loaded")
	assert.Equal(t, "subprocess:fake-office", convErr.Converter)
}

func TestSubprocessConverterMissingBinary(t *testing.T) {
	dir := t.TempDir()
	_, err := NewSubprocessConverter(filepath.Join(dir, "no-such-office")).Convert(context.Background(), filepath.Join(dir, "a.docx"), dir)
	assert.True(t, IsConversionError(err))
}

func TestAutomationConverterUnsupported(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("automation is available on windows")
	}
	dir := t.TempDir()

	_, err := (&AutomationConverter{}).Convert(context.Background(), filepath.Join(dir, "a.docx"), dir)
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "automation:Word.Application", convErr.Converter)
	assert.Contains(t, err.Error(), "not available on "+runtime.GOOS)
}

func TestConversionAdapter(t *testing.T) {
	tests := []struct {
		name      string
		converter *fakeConverter
		validPDF  bool
		timeout   time.Duration
		wantErr   bool
		wantCause error
	}{
		{
			name:      "valid pdf",
			converter: &fakeConverter{},
			validPDF:  true,
		},
		{
			name:      "no output",
			converter: &fakeConverter{},
			wantErr:   true,
		},
		{
			name:      "empty output",
			converter: &fakeConverter{Output: []byte{}},
			wantErr:   true,
		},
		{
			name:      "not a pdf",
			converter: &fakeConverter{Output: []byte("%PDF-1.4 truncated")},
			wantErr:   true,
		},
		{
			name:      "converter error leaves partial file",
			converter: &fakeConverter{Output: []byte("%PDF-1.4 partial"), Err: errors.New("crashed")},
			wantErr:   true,
		},
		{
			name:      "hung converter",
			converter: &fakeConverter{Block: true},
			timeout:   50 * time.Millisecond,
			wantErr:   true,
			wantCause: context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.validPDF {
				tt.converter.Output = testPDF(t)
			}
			dir := t.TempDir()
			docx := filepath.Join(dir, "document.docx")
			require.NoError(t, os.WriteFile(docx, []byte("docx"), 0o600))

			adapter := NewConversionAdapter(tt.converter, tt.timeout, nil)
			assert.Same(t, tt.converter, adapter.Converter())

			pdfPath, err := adapter.Convert(context.Background(), docx)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.FileExists(t, pdfPath)
				return
			}

			var convErr *ConversionError
			require.ErrorAs(t, err, &convErr)
			assert.Equal(t, "fake", convErr.Converter)
			assert.Empty(t, pdfPath)
			assert.NoFileExists(t, filepath.Join(dir, "document.pdf"), "no partial pdf is left behind")
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestConversionAdapterTimeoutKillsSubprocess(t *testing.T) {
	script := writeScript(t, "exec sleep 10\n")
	dir := t.TempDir()
	docx := filepath.Join(dir, "document.docx")
	require.NoError(t, os.WriteFile(docx, []byte("docx"), 0o600))

	adapter := NewConversionAdapter(NewSubprocessConverter(script), 100*time.Millisecond, nil)

	start := time.Now()
	_, err := adapter.Convert(context.Background(), docx)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, IsConversionError(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
