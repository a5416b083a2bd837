package docgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MissingTemplateError is returned when the template file of a document type
// does not exist. No output is produced.
type MissingTemplateError struct {
	Type DocumentType
	Path string
}

func (e *MissingTemplateError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("template for %s not found: %s", e.Type, e.Path)
	}
	return fmt.Sprintf("template not found: %s", e.Path)
}

// NewMissingTemplateError creates a new missing template error
func NewMissingTemplateError(t DocumentType, path string) error {
	return &MissingTemplateError{Type: t, Path: path}
}

// DateFormatError is returned when a date field does not match its layout
type DateFormatError struct {
	Field  string
	Value  string
	Layout string
	Cause  error
}

func (e *DateFormatError) Error() string {
	msg := fmt.Sprintf("invalid date for %s: %q does not match %s", e.Field, e.Value, displayLayout(e.Layout))
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *DateFormatError) Unwrap() error {
	return e.Cause
}

// NewDateFormatError creates a new date format error
func NewDateFormatError(field, value, layout string, cause error) error {
	return &DateFormatError{
		Field:  field,
		Value:  value,
		Layout: layout,
		Cause:  cause,
	}
}

// displayLayout renders a Go reference layout the way users write dates
func displayLayout(layout string) string {
	r := strings.NewReplacer("2006", "YYYY", "01", "MM", "02", "DD")
	return r.Replace(layout)
}

// ConversionError is returned when a DOCX file could not be turned into a
// PDF. Output holds whatever the converter printed.
type ConversionError struct {
	Converter string
	Path      string
	Output    string
	Cause     error
}

func (e *ConversionError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "conversion of '%s'", e.Path)
	if e.Converter != "" {
		fmt.Fprintf(&sb, " with %s", e.Converter)
	}
	sb.WriteString(" failed")
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		fmt.Fprintf(&sb, " (output: %s)", out)
	}
	return sb.String()
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// NewConversionError creates a new conversion error
func NewConversionError(converter, path, output string, cause error) error {
	return &ConversionError{
		Converter: converter,
		Path:      path,
		Output:    output,
		Cause:     cause,
	}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// ValidationIssue represents a single validation problem
type ValidationIssue struct {
	Field   string
	Message string
}

// ValidationError represents multiple validation issues
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation error"
	}

	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation error: %s - %s", e.Issues[0].Field, e.Issues[0].Message)
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d validation issues:", len(e.Issues)))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("  %s: %s", issue.Field, issue.Message))
	}
	return strings.Join(parts, "\n")
}

// NewValidationError creates a validation error with a single issue
func NewValidationError(field, message string) error {
	return &ValidationError{Issues: []ValidationIssue{{Field: field, Message: message}}}
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.errors
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	var contextParts []string
	for k, v := range e.Context {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(contextParts)

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsMissingTemplateError checks if err is or wraps a missing template error
func IsMissingTemplateError(err error) bool {
	var target *MissingTemplateError
	return errors.As(err, &target)
}

// IsDateFormatError checks if err is or wraps a date format error
func IsDateFormatError(err error) bool {
	var target *DateFormatError
	return errors.As(err, &target)
}

// IsConversionError checks if err is or wraps a conversion error
func IsConversionError(err error) bool {
	var target *ConversionError
	return errors.As(err, &target)
}

// IsValidationError checks if err is or wraps a validation error
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsDocumentError checks if err is or wraps a document error
func IsDocumentError(err error) bool {
	var target *DocumentError
	return errors.As(err, &target)
}
