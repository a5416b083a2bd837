package main

import (
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docgen/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.Listen
			}
			gen := a.generator()
			a.logger.Info("starting server",
				"addr", addr,
				"templates", a.config.TemplateDir,
				"converter", gen.Converter().Name(),
				"convert", a.config.Convert,
			)

			srv, err := web.NewServer(gen, a.logger)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8501)")
	return cmd
}
