package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("fantasy-league-scraper/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startRunSpan opens the root span of one CLI operation.
func startRunSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return usecaseTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(attrs...))
}

// startUsecaseSpan only nests under an existing span.
func startUsecaseSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name)
}

func recordSpanError(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func requestAttributes(req ScrapeRequest) []attribute.KeyValue {
	kinds := make([]string, len(req.Kinds))
	for i, kind := range req.Kinds {
		kinds[i] = string(kind)
	}
	return []attribute.KeyValue{
		attribute.String("scrape.league_type", string(req.LeagueType)),
		attribute.String("scrape.competition_id", req.CompetitionID),
		attribute.StringSlice("scrape.kinds", kinds),
		attribute.Bool("scrape.manual_login", req.ManualLogin),
		attribute.Bool("scrape.persist", req.TargetLeagueID != ""),
	}
}
