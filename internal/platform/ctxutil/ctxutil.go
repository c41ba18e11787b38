// Package ctxutil carries request-scoped identity and trace ids on a context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestDataKey struct{}
	traceDataKey   struct{}
)

// RequestData carries the verified caller identity. Handlers read it once and
// pass the user id explicitly to use cases.
type RequestData struct {
	UserID uuid.UUID
}

type TraceData struct {
	TraceID   string
	RequestID string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}

// LogFields returns the trace, request and user ids on ctx as logger
// key/value pairs. Empty ids are omitted.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			kv = append(kv, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		kv = append(kv, "user_id", rd.UserID.String())
	}
	return kv
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
