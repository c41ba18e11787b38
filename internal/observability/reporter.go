package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// ErrorReporter records failures that batch work swallows to keep going.
type ErrorReporter interface {
	Report(ctx context.Context, operation string, err error, keysAndValues ...interface{})
}

type reporter struct {
	log *logger.Logger
}

func NewErrorReporter(log *logger.Logger) ErrorReporter {
	return &reporter{log: log.With("component", "ErrorReporter")}
}

func (r *reporter) Report(ctx context.Context, operation string, err error, keysAndValues ...interface{}) {
	if err == nil {
		return
	}
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.RecordError(err, trace.WithAttributes(attribute.String("operation", operation)))
		span.SetStatus(codes.Error, operation)
	}
	Current().IncBatchError(operation)
	kv := append([]interface{}{"operation", operation, "error", err}, keysAndValues...)
	r.log.Error("Batch operation failed", kv...)
}
