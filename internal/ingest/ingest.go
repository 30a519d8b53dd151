package ingest

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.opentelemetry.io/collector/pdata/ptrace"
	"go.uber.org/zap"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/flatten"
	"github.com/go-faster/otelbuf/internal/otelschema"
)

const (
	sniffBytes = 8192

	// DefaultMaxDocumentBytes bounds a single JSON document, JSON line or
	// protobuf payload.
	DefaultMaxDocumentBytes = 64 << 20
)

// Options configures one ingestion run.
type Options struct {
	OnError          OnError
	MaxDocumentBytes int64
}

func (o *Options) setDefaults() {
	if o.MaxDocumentBytes <= 0 {
		o.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
}

var (
	tracesJSON  = &ptrace.JSONUnmarshaler{}
	metricsJSON = &pmetric.JSONUnmarshaler{}
	logsJSON    = &plog.JSONUnmarshaler{}
	tracesPB    = &ptrace.ProtoUnmarshaler{}
	metricsPB   = &pmetric.ProtoUnmarshaler{}
	logsPB      = &plog.ProtoUnmarshaler{}
)

type ingester struct {
	src  Source
	set  *colbuf.BufferSet
	sess *Session
	opts Options
	lg   *zap.Logger

	lastSignal   Signal
	pendingNulls int
}

// Ingest reads one source into the buffer set and reports the session
// outcome. The returned session is valid even when ingestion fails partway.
//
// Format detection fails closed: input that is neither OTLP JSON nor OTLP
// protobuf aborts with a FormatError regardless of the error policy, as does
// input exceeding MaxDocumentBytes.
func Ingest(ctx context.Context, src Source, set *colbuf.BufferSet, opts Options) (*Session, error) {
	opts.setDefaults()
	sess := newSession(src.Name())
	lg := zctx.From(ctx).With(
		zap.String("source", src.Name()),
		zap.Stringer("session_id", sess.ID),
	)

	br, closer, err := openStream(ctx, src)
	if err != nil {
		return sess, err
	}
	defer func() {
		_ = closer.Close()
	}()

	sample, err := br.Peek(sniffBytes)
	if len(sample) == 0 {
		if err != nil && err != io.EOF {
			return sess, errors.Wrap(err, "read sample")
		}
		return sess, &FormatError{Source: src.Name(), Reason: "empty input"}
	}
	sess.Format = DetectFormat(sample)

	i := &ingester{src: src, set: set, sess: sess, opts: opts, lg: lg}
	switch sess.Format {
	case FormatJSON:
		sess.JSONLines = DetectJSONLines(sample) || jsonLinesExt(src.Name())
		if sess.JSONLines {
			err = i.ingestJSONLines(ctx, br)
		} else {
			err = i.ingestDocument(br, (*ingester).decodeJSONDocument)
		}
	case FormatProtobuf:
		err = i.ingestDocument(br, (*ingester).decodeProto)
	default:
		return sess, &FormatError{Source: src.Name(), Reason: "input is neither OTLP JSON nor OTLP protobuf"}
	}
	if err != nil {
		return sess, err
	}
	i.finish()

	lg.Debug("Ingested source",
		zap.Stringer("format", sess.Format),
		zap.Bool("json_lines", sess.JSONLines),
		zap.Int64("records", sess.Records.Load()),
		zap.Int64("parse_errors", sess.ParseErrors.Load()),
	)
	return sess, nil
}

func (i *ingester) ingestJSONLines(ctx context.Context, br *bufio.Reader) error {
	sc := bufio.NewScanner(br)
	bufSize := streamBufBytes
	if int64(bufSize) > i.opts.MaxDocumentBytes {
		bufSize = int(i.opts.MaxDocumentBytes)
	}
	sc.Buffer(make([]byte, bufSize), int(i.opts.MaxDocumentBytes))

	var line int
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		i.sess.Documents.Inc()
		if err := i.decodeJSON(data, line); err != nil {
			if err := i.handleError(err); err != nil {
				return err
			}
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &SizeLimitError{Source: i.src.Name(), Limit: i.opts.MaxDocumentBytes}
		}
		return errors.Wrap(err, "scan lines")
	}
	return nil
}

func (i *ingester) ingestDocument(br *bufio.Reader, decode func(*ingester, []byte) error) error {
	data, err := io.ReadAll(io.LimitReader(br, i.opts.MaxDocumentBytes+1))
	if err != nil {
		return errors.Wrap(err, "read document")
	}
	if int64(len(data)) > i.opts.MaxDocumentBytes {
		return &SizeLimitError{Source: i.src.Name(), Limit: i.opts.MaxDocumentBytes}
	}
	i.sess.Documents.Inc()
	if err := decode(i, data); err != nil {
		return i.handleError(err)
	}
	return nil
}

func (i *ingester) decodeJSONDocument(data []byte) error {
	return i.decodeJSON(data, 0)
}

func (i *ingester) decodeJSON(data []byte, line int) error {
	switch DetectJSONSignal(data) {
	case SignalTraces:
		td, err := tracesJSON.UnmarshalTraces(data)
		if err != nil {
			return &ParseError{Source: i.src.Name(), Line: line, Err: errors.Wrap(err, "traces")}
		}
		i.consumeTraces(td)
	case SignalMetrics:
		md, err := metricsJSON.UnmarshalMetrics(data)
		if err != nil {
			return &ParseError{Source: i.src.Name(), Line: line, Err: errors.Wrap(err, "metrics")}
		}
		i.consumeMetrics(md)
	case SignalLogs:
		ld, err := logsJSON.UnmarshalLogs(data)
		if err != nil {
			return &ParseError{Source: i.src.Name(), Line: line, Err: errors.Wrap(err, "logs")}
		}
		i.consumeLogs(ld)
	default:
		return &ParseError{Source: i.src.Name(), Line: line, Err: errors.New("no OTLP resource key")}
	}
	return nil
}

// decodeProto tries the three signals in order. Proto decoding is lenient,
// so a successful unmarshal only counts when it yields resource entries; a
// payload empty under every signal is malformed.
func (i *ingester) decodeProto(data []byte) error {
	if td, err := tracesPB.UnmarshalTraces(data); err == nil && td.ResourceSpans().Len() > 0 {
		i.consumeTraces(td)
		return nil
	}
	if md, err := metricsPB.UnmarshalMetrics(data); err == nil && md.ResourceMetrics().Len() > 0 {
		i.consumeMetrics(md)
		return nil
	}
	if ld, err := logsPB.UnmarshalLogs(data); err == nil && ld.ResourceLogs().Len() > 0 {
		i.consumeLogs(ld)
		return nil
	}
	return &ParseError{Source: i.src.Name(), Err: errors.New("protobuf payload matches no OTLP signal")}
}

func (i *ingester) consumeTraces(td ptrace.Traces) {
	rows := flatten.Traces(td)
	i.set.Table(otelschema.KindTraces).AppendBatch(rows)
	i.sess.Records.Add(int64(len(rows)))
	i.noteSignal(SignalTraces)
}

func (i *ingester) consumeLogs(ld plog.Logs) {
	rows := flatten.Logs(ld)
	i.set.Table(otelschema.KindLogs).AppendBatch(rows)
	i.sess.Records.Add(int64(len(rows)))
	i.noteSignal(SignalLogs)
}

func (i *ingester) consumeMetrics(md pmetric.Metrics) {
	rows := flatten.Metrics(md)
	for shape := otelschema.ShapeGauge; shape <= otelschema.ShapeSummary; shape++ {
		if batch := rows.Shape(shape); len(batch) > 0 {
			i.set.Metric(shape).AppendBatch(batch)
		}
	}
	i.sess.Records.Add(int64(rows.Total()))
	i.sess.DroppedMetrics.Add(int64(rows.Dropped))
	i.noteSignal(SignalMetrics)
}

func (i *ingester) handleError(err error) error {
	i.sess.ParseErrors.Inc()
	switch i.opts.OnError {
	case OnErrorFail:
		return err
	case OnErrorSkip:
		i.sess.Skipped.Inc()
		i.lg.Debug("Skipping malformed input", zap.Error(err))
		return nil
	case OnErrorNullify:
		i.nullify()
		return nil
	default:
		return errors.Errorf("unhandled on_error mode: %d", i.opts.OnError)
	}
}

// nullify stores an all-null placeholder row in the table of the last
// detected signal. Before any signal is known placeholders are held back and
// flushed once the first valid input reveals where the source routes; if the
// source never yields a signal they are dropped and counted.
func (i *ingester) nullify() {
	if i.lastSignal == SignalUnknown {
		i.pendingNulls++
		return
	}
	i.appendNull()
}

func (i *ingester) appendNull() {
	buf := i.set.Table(nullTable(i.lastSignal))
	buf.Append(nullRow(buf.Schema().NumColumns()))
	i.sess.Nullified.Inc()
}

func (i *ingester) noteSignal(sig Signal) {
	i.lastSignal = sig
	for i.pendingNulls > 0 {
		i.pendingNulls--
		i.appendNull()
	}
}

func (i *ingester) finish() {
	if i.pendingNulls > 0 {
		i.sess.DroppedNulls.Add(int64(i.pendingNulls))
		i.pendingNulls = 0
	}
}

// nullTable routes placeholder rows: traces and logs to their tables,
// metrics to the gauge table.
func nullTable(sig Signal) otelschema.TableKind {
	switch sig {
	case SignalTraces:
		return otelschema.KindTraces
	case SignalLogs:
		return otelschema.KindLogs
	default:
		return otelschema.KindMetricsGauge
	}
}

func nullRow(n int) []otelschema.Value {
	row := make([]otelschema.Value, n)
	for idx := range row {
		row[idx] = otelschema.Null()
	}
	return row
}
