package session

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var sessionTracer = otel.Tracer("fantasy-league-scraper/internal/session")
var sessionNoopSpan = trace.SpanFromContext(context.Background())

func startSessionSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, sessionNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, sessionNoopSpan
	}
	return sessionTracer.Start(ctx, name)
}
