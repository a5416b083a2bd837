package docgen

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Converter backend names accepted by ConverterConfig.Backend
const (
	BackendAuto       = "auto"
	BackendSubprocess = "subprocess"
	BackendAutomation = "automation"
)

// Config contains all configuration options for document generation
type Config struct {
	// TemplateDir holds the Word templates of the template-based document types
	TemplateDir string `yaml:"template_dir"`
	// WorkDir is where per-request workspaces are created
	WorkDir string `yaml:"work_dir"`
	// Listen is the HTTP listen address
	Listen string `yaml:"listen"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
	// LogMode selects the zap preset (development or production)
	LogMode string `yaml:"log_mode"`
	// Convert enables PDF conversion of template documents
	Convert   bool            `yaml:"convert"`
	Converter ConverterConfig `yaml:"converter"`
	// InvoiceStart seeds the invoice number counter
	InvoiceStart int64           `yaml:"invoice_start"`
	MaxUploadMB  int             `yaml:"max_upload_mb"`
	Signature    SignatureConfig `yaml:"signature"`
}

// ConverterConfig configures the DOCX to PDF converter
type ConverterConfig struct {
	// Backend is auto, subprocess or automation
	Backend string        `yaml:"backend"`
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
}

// SignatureConfig bounds the size of embedded signature images, in pixels
type SignatureConfig struct {
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TemplateDir: "templates",
		WorkDir:     os.TempDir(),
		Listen:      ":8501",
		LogLevel:    "info",
		LogMode:     "development",
		Convert:     true,
		Converter: ConverterConfig{
			Backend: BackendAuto,
			Binary:  "libreoffice",
			Timeout: 2 * time.Minute,
		},
		MaxUploadMB: 5,
		Signature: SignatureConfig{
			MaxWidth:  300,
			MaxHeight: 120,
		},
	}
}

// LoadConfig reads a YAML config file over the defaults, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnvironment()
	return cfg, cfg.Validate()
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	config.ApplyEnvironment()
	return config
}

// ApplyEnvironment overrides fields from DOCGEN_* environment variables.
// Unparsable numeric values are ignored.
func (c *Config) ApplyEnvironment() {
	// DOCGEN_TEMPLATE_DIR
	if val := os.Getenv("DOCGEN_TEMPLATE_DIR"); val != "" {
		c.TemplateDir = val
	}

	// DOCGEN_WORK_DIR
	if val := os.Getenv("DOCGEN_WORK_DIR"); val != "" {
		c.WorkDir = val
	}

	// DOCGEN_LISTEN
	if val := os.Getenv("DOCGEN_LISTEN"); val != "" {
		c.Listen = val
	}

	// DOCGEN_LOG_LEVEL
	if val := os.Getenv("DOCGEN_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	// DOCGEN_LOG_MODE
	if val := os.Getenv("DOCGEN_LOG_MODE"); val != "" {
		c.LogMode = val
	}

	// DOCGEN_CONVERT
	if val := os.Getenv("DOCGEN_CONVERT"); val != "" {
		c.Convert = parseBool(val)
	}

	// DOCGEN_CONVERTER
	if val := os.Getenv("DOCGEN_CONVERTER"); val != "" {
		c.Converter.Backend = strings.ToLower(val)
	}

	// DOCGEN_CONVERTER_BINARY
	if val := os.Getenv("DOCGEN_CONVERTER_BINARY"); val != "" {
		c.Converter.Binary = val
	}

	// DOCGEN_CONVERTER_TIMEOUT
	if val := os.Getenv("DOCGEN_CONVERTER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Converter.Timeout = d
		}
	}

	// DOCGEN_INVOICE_START
	if val := os.Getenv("DOCGEN_INVOICE_START"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.InvoiceStart = n
		}
	}

	// DOCGEN_MAX_UPLOAD_MB
	if val := os.Getenv("DOCGEN_MAX_UPLOAD_MB"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxUploadMB = n
		}
	}
}

// Validate checks if the configuration is valid. Every problem found is
// reported, not just the first.
func (c *Config) Validate() error {
	errs := NewMultiError()
	if c.TemplateDir == "" {
		errs.Add(errors.New("template_dir is required"))
	}
	if c.WorkDir == "" {
		errs.Add(errors.New("work_dir is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errs.Add(errors.New("invalid log level: " + c.LogLevel))
	}

	switch c.Converter.Backend {
	case BackendAuto, BackendSubprocess, BackendAutomation:
	default:
		errs.Add(fmt.Errorf("unsupported converter backend %q (use auto, subprocess or automation)", c.Converter.Backend))
	}
	if c.Converter.Backend != BackendAutomation && c.Converter.Binary == "" {
		errs.Add(errors.New("converter binary is required"))
	}
	if c.Converter.Timeout < 0 {
		errs.Add(errors.New("converter timeout cannot be negative"))
	}

	if c.InvoiceStart < 0 {
		errs.Add(errors.New("invoice start cannot be negative"))
	}
	if c.MaxUploadMB <= 0 {
		errs.Add(errors.New("max_upload_mb must be > 0"))
	}
	if c.Signature.MaxWidth <= 0 || c.Signature.MaxHeight <= 0 {
		errs.Add(errors.New("signature bounds must be positive"))
	}

	return errs.Err()
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
