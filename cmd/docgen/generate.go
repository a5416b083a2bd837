package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docgen/pkg/docgen"
)

type generateOptions struct {
	sets        []string
	signature   string
	outDir      string
	format      string
	interactive bool
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <type>",
		Short: "Generate a document and write it to the output directory",
		Long: `Generates one document. Field values come from --set key=value flags;
fields left unset take their default value, or are asked for with --interactive.

Example:
  docgen generate vat-agreement --set client_name="Acme FZE" --set date_of_agreement=2025/03/25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Field value as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.signature, "signature", "", "Signature image (PNG or JPEG)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&opts.format, "format", "", "Comma separated formats: pdf, docx (default all available)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for fields not given with --set")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, typeArg string, opts *generateOptions) error {
	t, err := docgen.ParseDocumentType(typeArg)
	if err != nil {
		return err
	}
	spec, _ := docgen.Lookup(t)

	fields, err := parseSets(opts.sets)
	if err != nil {
		return err
	}
	if err := a.fillFields(spec, fields, opts.interactive); err != nil {
		return err
	}

	var formats []string
	if opts.format != "" {
		if formats, err = docgen.ParseFormats(opts.format); err != nil {
			return err
		}
	}

	var signature []byte
	if opts.signature != "" {
		if signature, err = os.ReadFile(opts.signature); err != nil {
			return fmt.Errorf("read signature: %w", err)
		}
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	res, err := a.generator().Generate(cmd.Context(), docgen.Request{
		Type:      t,
		Fields:    fields,
		Signature: signature,
		Formats:   formats,
	})
	if err != nil {
		a.logger.Error("generation failed", "type", string(t), "error", err)
		return err
	}

	paths, err := writeArtifacts(opts.outDir, res.Artifacts)
	if err != nil {
		a.logger.Error("writing output failed", "type", string(t), "error", err)
		return err
	}
	for _, path := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

// writeArtifacts stores every artifact in dir, or none of them. Each file is
// written to a temporary name first and renamed once all writes succeeded.
func writeArtifacts(dir string, artifacts []*docgen.Artifact) ([]string, error) {
	var temps, paths []string
	rollback := func() {
		for _, p := range temps {
			_ = os.Remove(p)
		}
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}

	for _, artifact := range artifacts {
		f, err := os.CreateTemp(dir, ".docgen-*")
		if err != nil {
			rollback()
			return nil, fmt.Errorf("write %s: %w", artifact.Format, err)
		}
		temps = append(temps, f.Name())
		_, err = f.Write(artifact.Data)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err == nil {
			err = os.Chmod(f.Name(), 0o644)
		}
		if err != nil {
			rollback()
			return nil, fmt.Errorf("write %s: %w", artifact.Format, err)
		}
	}

	for i, artifact := range artifacts {
		path := filepath.Join(dir, artifact.Name)
		if err := os.Rename(temps[i], path); err != nil {
			rollback()
			return nil, fmt.Errorf("write %s: %w", artifact.Format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// fillFields completes fields with defaults, or with prompted values in
// interactive mode
func (a *app) fillFields(spec docgen.DocumentSpec, fields docgen.Fields, interactive bool) error {
	for _, f := range spec.InputFields() {
		if _, ok := fields[f.Key]; ok {
			continue
		}
		if !interactive {
			if f.Default != "" {
				fields[f.Key] = f.Default
			}
			continue
		}
		value, err := a.prompt.Input(f.Label, f.Default)
		if err != nil {
			return err
		}
		fields[f.Key] = value
	}
	return nil
}

// parseSets turns key=value pairs into fields
func parseSets(sets []string) (docgen.Fields, error) {
	fields := docgen.Fields{}
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, docgen.NewValidationError("set", fmt.Sprintf("expected key=value, got %q", s))
		}
		fields[key] = value
	}
	return fields, nil
}
