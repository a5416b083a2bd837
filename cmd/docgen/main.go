// Command docgen generates business documents from Word templates and the
// built-in VAT registration agreement.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docgen/pkg/docgen"
)

// app holds the state shared by the subcommands
type app struct {
	configPath string
	logLevel   string
	logMode    string

	config *docgen.Config
	logger *docgen.Logger
	prompt prompter
}

func newRootCmd(prompt prompter) *cobra.Command {
	a := &app{prompt: prompt}

	rootCmd := &cobra.Command{
		Use:   "docgen",
		Short: "Generate invoices, NDAs, contracts and VAT agreements",
		Long: `docgen fills Word templates with field values and converts them to PDF,
and assembles the VAT registration agreement as PDF and DOCX.

Templates are read from the template directory (see --config).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logMode, "log-mode", "", "Log mode: development or production")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newTypesCmd(a))
	rootCmd.AddCommand(newGenerateCmd(a))
	return rootCmd
}

// setup loads the configuration and builds the logger. Flags win over the
// config file and the environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := docgen.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("log-mode") {
		cfg.LogMode = a.logMode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := docgen.NewLoggerFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.config = cfg
	a.logger = logger
	return nil
}

func (a *app) generator() *docgen.Generator {
	return docgen.New(
		docgen.WithConfig(a.config),
		docgen.WithLogger(a.logger),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(surveyPrompter{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
