package flatten

import (
	"context"

	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/go-faster/otelbuf/internal/colbuf"
	"github.com/go-faster/otelbuf/internal/otelschema"
)

// Consumer flattens decoded signals and appends them to a buffer set. It is
// the push-style ingestion entry point for callers that already hold pdata.
type Consumer struct {
	set *colbuf.BufferSet
}

// NewConsumer creates new Consumer.
func NewConsumer(set *colbuf.BufferSet) *Consumer {
	return &Consumer{set: set}
}

// ConsumeTraces stores one row per span.
func (c *Consumer) ConsumeTraces(ctx context.Context, td ptrace.Traces) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.set.Table(otelschema.KindTraces).AppendBatch(Traces(td))
	return nil
}

// ConsumeLogs stores one row per log record.
func (c *Consumer) ConsumeLogs(ctx context.Context, ld plog.Logs) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.set.Table(otelschema.KindLogs).AppendBatch(Logs(ld))
	return nil
}

// ConsumeMetrics stores one row per data point, routed by metric shape.
func (c *Consumer) ConsumeMetrics(ctx context.Context, md pmetric.Metrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := Metrics(md)
	for shape := otelschema.ShapeGauge; shape <= otelschema.ShapeSummary; shape++ {
		if batch := rows.Shape(shape); len(batch) > 0 {
			c.set.Metric(shape).AppendBatch(batch)
		}
	}
	return nil
}
