package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/ingest"
	"github.com/go-faster/otelbuf/internal/otelschema"
)

func newIngestCommand() *cobra.Command {
	var (
		cfgPath string
		cfg     Config
	)
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest OTLP files into an in-memory buffer set and report what was stored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fileCfg, err := loadConfig(cfgPath)
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			// Explicit flags win over the config file.
			flags := cmd.Flags()
			if !flags.Changed("on-error") {
				cfg.OnError = fileCfg.OnError
			}
			if !flags.Changed("max-document-bytes") {
				cfg.MaxDocumentBytes = fileCfg.MaxDocumentBytes
			}
			if !flags.Changed("target-rows") {
				cfg.TargetRows = fileCfg.TargetRows
			}
			if !flags.Changed("chunk-rows") {
				cfg.ChunkRows = fileCfg.ChunkRows
			}
			if !flags.Changed("max-chunks") {
				cfg.MaxChunks = fileCfg.MaxChunks
			}
			if !flags.Changed("workers") {
				cfg.Workers = fileCfg.Workers
			}
			cfg.setDefaults()

			onError, err := ingest.ParseOnError(cfg.OnError)
			if err != nil {
				return err
			}

			set := colbuf.NewBufferSet(cfg.bufferOptions())
			opts := ingest.Options{
				OnError:          onError,
				MaxDocumentBytes: cfg.MaxDocumentBytes,
			}

			sessions := make([]*ingest.Session, len(args))
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(cfg.Workers)
			for i, path := range args {
				g.Go(func() error {
					sess, err := ingest.Ingest(ctx, ingest.FileSource{Path: path}, set, opts)
					if err != nil {
						return errors.Wrapf(err, "ingest %q", path)
					}
					sessions[i] = sess
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			set.FlushAll()

			w := cmd.OutOrStdout()
			for _, sess := range sessions {
				printSession(w, sess)
			}
			printTables(w, set)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfgPath, "config", "c", "", "Path to YAML config (defaults to otelbuf.yml when present)")
	f.StringVar(&cfg.OnError, "on-error", ingest.OnErrorFail.String(), "Malformed input policy: fail, skip or nullify")
	f.Int64Var(&cfg.MaxDocumentBytes, "max-document-bytes", ingest.DefaultMaxDocumentBytes, "Hard size limit per document or line")
	f.IntVar(&cfg.TargetRows, "target-rows", colbuf.DefaultTargetRows, "Target retained rows per table")
	f.IntVar(&cfg.ChunkRows, "chunk-rows", colbuf.DefaultChunkRows, "Rows per sealed chunk")
	f.IntVar(&cfg.MaxChunks, "max-chunks", 0, "Sealed chunks retained per table (0 derives from target-rows)")
	f.IntVar(&cfg.Workers, "workers", 1, "Concurrently ingested files")
	return cmd
}

func printSession(w io.Writer, sess *ingest.Session) {
	format := sess.Format.String()
	if sess.JSONLines {
		format += " lines"
	}
	fmt.Fprintf(w, "%s: %s, %s documents, %s records\n",
		sess.Source, format,
		humanize.Comma(sess.Documents.Load()),
		humanize.Comma(sess.Records.Load()),
	)
	if n := sess.ParseErrors.Load(); n > 0 {
		fmt.Fprintf(w, "  parse errors: %s (skipped %s, nullified %s)\n",
			humanize.Comma(n),
			humanize.Comma(sess.Skipped.Load()),
			humanize.Comma(sess.Nullified.Load()),
		)
	}
	if n := sess.DroppedNulls.Load(); n > 0 {
		fmt.Fprintf(w, "  dropped placeholders: %s\n", humanize.Comma(n))
	}
	if n := sess.DroppedMetrics.Load(); n > 0 {
		fmt.Fprintf(w, "  dropped metrics: %s\n", humanize.Comma(n))
	}
}

func printTables(w io.Writer, set *colbuf.BufferSet) {
	fmt.Fprintf(w, "stored %s rows\n", humanize.Comma(int64(set.TotalRows())))
	for kind := otelschema.KindTraces; kind <= otelschema.KindMetricsSummary; kind++ {
		buf := set.Table(kind)
		if buf.Len() == 0 && buf.Evicted() == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s: %s rows", otelschema.For(kind).Name, humanize.Comma(int64(buf.Len())))
		if n := buf.Evicted(); n > 0 {
			fmt.Fprintf(w, " (%s chunks evicted)", humanize.Comma(n))
		}
		fmt.Fprintln(w)
	}
}
