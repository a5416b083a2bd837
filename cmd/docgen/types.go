package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docgen/pkg/docgen"
)

func newTypesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List document types and their fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tTITLE\tSOURCE\tFIELDS")
			for _, spec := range docgen.Catalog() {
				source := spec.Template
				if spec.Assembled {
					source = "(assembled)"
				}
				keys := make([]string, 0, len(spec.Fields))
				for _, f := range spec.InputFields() {
					keys = append(keys, f.Key)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.Type, spec.Title, source, strings.Join(keys, ", "))
			}
			return w.Flush()
		},
	}
}
