package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/go-faster/otelbuf/internal/otelschema"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List stored table layouts and the synthesized metrics union",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for kind := otelschema.KindTraces; kind <= otelschema.KindMetricsSummary; kind++ {
				printSchema(w, otelschema.For(kind))
			}
			printSchema(w, otelschema.MetricsUnion())
			return nil
		},
	}
}

func printSchema(w io.Writer, s otelschema.Schema) {
	fmt.Fprintf(w, "%s (%d columns)\n", s.Name, s.NumColumns())
	for _, col := range s.Columns {
		fmt.Fprintf(w, "  %-24s %s\n", col.Name, col.Type)
	}
	fmt.Fprintln(w)
}
