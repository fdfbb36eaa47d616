package operations

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inpcalc/internal/infrastructure"
)

const (
	TracerName = "inpcalc.operations"
)

// traceDispatch creates the span covering one dispatched sample run
func traceDispatch(ctx context.Context, routine Routine, kind Kind) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, fmt.Sprintf("routine.%s", routine.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("routine.id", routine.ID()),
			attribute.String("sample.type", string(kind.Type)),
			attribute.String("sample.location", string(kind.Location)),
		),
	)
}

// runStage executes fn as stage id: a child span plus the stage's state in
// progress. fn returns a short description of what it produced.
func runStage(ctx context.Context, progress *Progress, id string, fn func(ctx context.Context) (string, error)) error {
	ctx, span := otel.Tracer(TracerName).Start(ctx, fmt.Sprintf("stage.%s", id),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage.id", id)),
	)
	defer span.End()

	state := progress.Stage(id)
	if state == nil {
		state = NewStepState(id)
	}
	state.Start()

	message, err := fn(ctx)
	if err != nil {
		state.Fail(err)
		infrastructure.RecordError(ctx, err)
		return err
	}

	state.Complete(message)
	span.SetAttributes(attribute.String("stage.result", message))
	span.SetStatus(codes.Ok, "")
	return nil
}
