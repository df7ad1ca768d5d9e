package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	reportIDKey  contextKey = "report_id"
	sellerIDKey  contextKey = "seller_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and a logger carrying it
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithReport scopes the context logger to one report and its seller.
// Empty ids are left out.
func WithReport(ctx context.Context, reportID, sellerID string) (context.Context, *zap.Logger) {
	l := FromContext(ctx)
	if reportID != "" {
		ctx = context.WithValue(ctx, reportIDKey, reportID)
		l = l.With(zap.String("report_id", reportID))
	}
	if sellerID != "" {
		ctx = context.WithValue(ctx, sellerIDKey, sellerID)
		l = l.With(zap.String("seller_id", sellerID))
	}
	return WithContext(ctx, l), l
}

// GetRequestID retrieves the request id from context
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetReportID retrieves the report id from context
func GetReportID(ctx context.Context) string {
	v, _ := ctx.Value(reportIDKey).(string)
	return v
}

// GetSellerID retrieves the seller id from context
func GetSellerID(ctx context.Context) string {
	v, _ := ctx.Value(sellerIDKey).(string)
	return v
}

// L returns the context logger with trace_id and span_id of the active span
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
