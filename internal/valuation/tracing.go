package valuation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "isxcli.valuation"

// StageTracer instruments the A-H pipeline stages with spans, mirroring
// the operations package's per-Step tracing for the ingestion pipeline.
type StageTracer struct {
	tracer trace.Tracer
}

// NewStageTracer returns a tracer bound to the valuation package's name.
func NewStageTracer() *StageTracer {
	return &StageTracer{tracer: otel.Tracer(tracerName)}
}

// TraceStage starts a span for one pipeline stage (A through H). Callers
// must invoke the returned end func exactly once, passing the stage's
// terminal error (nil on success).
func (t *StageTracer) TraceStage(ctx context.Context, stage string) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("valuation.stage.%s", stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("valuation.stage", stage)),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// TraceConvergenceIteration records one convergence round as a span event
// rather than its own span, keeping the parent stage span as the unit of
// work an operator searches for in a trace backend.
func (t *StageTracer) TraceConvergenceIteration(span trace.Span, iteration int, changed int) {
	span.AddEvent("convergence.iteration", trace.WithAttributes(
		attribute.Int("iteration", iteration),
		attribute.Int("pools_changed", changed),
	))
}
