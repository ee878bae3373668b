package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "healthcred"

// Tracer returns the application tracer from the global provider. Wiring an
// exporter is a deployment concern; without one the spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartStage opens a span for one intake pipeline stage. The workflow ID is
// attached so traces correlate with workflow store rows and audit events.
func StartStage(ctx context.Context, stage string, workflowID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "intake."+stage,
		trace.WithAttributes(
			attribute.String("intake.stage", stage),
			attribute.String("intake.workflow_id", workflowID),
		),
	)
}
