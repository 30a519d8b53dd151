// Binary otelbuf ingests OTLP telemetry files into in-memory columnar
// buffers and reports what it stored.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:   "otelbuf",
		Short: "otelbuf is an in-memory columnar store for OTLP telemetry",

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lg := zap.NewNop()
			if verbose {
				var err error
				if lg, err = zap.NewDevelopment(); err != nil {
					return errors.Wrap(err, "create logger")
				}
			}
			cmd.SetContext(zctx.Base(cmd.Context(), lg))
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(
		newIngestCommand(),
		newTablesCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, ctx.Err()) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(1)
		}

		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
