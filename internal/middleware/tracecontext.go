package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const TraceIDHeader = "X-Trace-ID"

// TraceContext surfaces the active trace id on the response so an API caller
// can be joined to its backend spans. Span creation and inbound context
// propagation belong to the otelgin middleware, which must run first.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		spanCtx := trace.SpanContextFromContext(c.Request.Context())
		if spanCtx.HasTraceID() {
			traceID := spanCtx.TraceID().String()
			c.Set("trace_id", traceID)
			c.Writer.Header().Set(TraceIDHeader, traceID)
		}
		c.Next()
	}
}
