package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records delegation outcomes: issuance, gate decisions and dispatches.
type BusinessMetrics interface {
	// RecordOperation counts an operation (e.g. "authorize") by status
	// ("success", "denied", "error").
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration observes how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordDenial counts a denied authorization attempt by reason code.
	RecordDenial(ctx context.Context, reason string)

	// RecordDispatch counts an outbound action after a granted authorization
	// ("success" or "failed").
	RecordDispatch(ctx context.Context, status string)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	denials    metric.Int64Counter
	dispatches metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meterProvider. Instrument names are
// prefixed with namespace (e.g. "zkgate_operations_total").
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	name := func(suffix string) string { return namespace + "_" + suffix }

	b := &businessMetrics{}
	var err error

	if b.operations, err = meter.Int64Counter(name("operations_total"),
		metric.WithDescription("Delegation operations by outcome"),
		metric.WithUnit("{operation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create operation counter: %w", err)
	}

	// Gate latency is dominated by the external verifier, so buckets reach into tens of seconds.
	if b.durations, err = meter.Float64Histogram(name("operation_duration_seconds"),
		metric.WithDescription("Duration of delegation operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	if b.denials, err = meter.Int64Counter(name("authorization_denials_total"),
		metric.WithDescription("Denied authorization attempts by reason"),
		metric.WithUnit("{denial}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create denial counter: %w", err)
	}

	if b.dispatches, err = meter.Int64Counter(name("dispatches_total"),
		metric.WithDescription("Actions dispatched after a granted authorization"),
		metric.WithUnit("{dispatch}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatch counter: %w", err)
	}

	return b, nil
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDenial(ctx context.Context, reason string) {
	b.denials.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (b *businessMetrics) RecordDispatch(ctx context.Context, status string) {
	b.dispatches.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// NoOpBusinessMetrics discards everything; used when METRICS_ENABLED is false.
type NoOpBusinessMetrics struct{}

// NewNoOpBusinessMetrics creates a no-op BusinessMetrics implementation.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return NoOpBusinessMetrics{}
}

func (NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (NoOpBusinessMetrics) RecordDenial(context.Context, string) {}

func (NoOpBusinessMetrics) RecordDispatch(context.Context, string) {}
