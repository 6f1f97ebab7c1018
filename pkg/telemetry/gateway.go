package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded for every Ratapay call.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// GatewayMetrics counts and times outbound Ratapay requests. Exported through
// the Prometheus reader as ratapay_requests_total and
// ratapay_request_duration_seconds.
type GatewayMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGatewayMetrics creates the instruments on meter.
func NewGatewayMetrics(meter metric.Meter) (*GatewayMetrics, error) {
	requests, err := meter.Int64Counter(
		"ratapay_requests_total",
		metric.WithDescription("Requests sent to the Ratapay API by endpoint and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: requests counter: %w", err)
	}
	duration, err := meter.Float64Histogram(
		"ratapay_request_duration_seconds",
		metric.WithDescription("Round trip time of Ratapay API requests"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: duration histogram: %w", err)
	}
	return &GatewayMetrics{requests: requests, duration: duration}, nil
}

// Record adds one request. endpoint must already be free of refs and query
// strings to keep label cardinality bounded.
func (m *GatewayMetrics) Record(ctx context.Context, endpoint, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
