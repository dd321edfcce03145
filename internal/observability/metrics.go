package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/goliatone/go-destform/pkg/validation"
)

// Metrics holds the OTel instruments for field validation.
type Metrics struct {
	ValidationRequests metric.Int64Counter
	ValidationLatency  metric.Float64Histogram
}

// NewMetrics creates the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFrom(otel.Meter("destform"))
}

// NewMetricsFrom creates the instruments on meter.
func NewMetricsFrom(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("destform.validation.requests",
		metric.WithDescription("Field validation requests by outcome"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("destform.validation.latency_seconds",
		metric.WithDescription("Time from issuing a field validation to its result"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ValidationRequests: requests,
		ValidationLatency:  latency,
	}, nil
}

// RecordValidation implements validation.Recorder.
func (m *Metrics) RecordValidation(ctx context.Context, res validation.Result, elapsed time.Duration, discarded bool) {
	attrs := metric.WithAttributes(
		attribute.String("type", res.Key.Type),
		attribute.String("field", res.Key.FieldID),
		attribute.String("status", res.Status.String()),
		attribute.Bool("discarded", discarded),
	)
	m.ValidationRequests.Add(ctx, 1, attrs)
	m.ValidationLatency.Record(ctx, elapsed.Seconds(), attrs)
}

var _ validation.Recorder = (*Metrics)(nil)
