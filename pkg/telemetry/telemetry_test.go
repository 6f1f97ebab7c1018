package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/ratapay/pkg/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ServiceName:       "ratapay-gateway",
		ServiceVersion:    "test",
		Environment:       "testing",
		OtelEndpoint:      "", // disabled
		RatapaySandbox:    true,
		RatapayMerchantID: "101",
		OtelSampleRate:    1,
	}
}

func TestSetup_NoOtelEndpoint(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("expected non-nil shutdown")
	}
	if handler == nil {
		t.Fatal("expected non-nil metrics handler")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_InstallsTraceContextPropagator(t *testing.T) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
	shutdown, _, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected traceparent among propagator fields, got %v", fields)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want sdktrace.SamplingDecision
	}{
		{1, sdktrace.RecordAndSample},
		{2, sdktrace.RecordAndSample},
		{0, sdktrace.Drop},
		{-1, sdktrace.Drop},
	}
	for _, tt := range tests {
		cfg := baseConfig()
		cfg.OtelSampleRate = tt.rate
		res := sampler(cfg).ShouldSample(sdktrace.SamplingParameters{
			ParentContext: context.Background(),
			TraceID:       trace.TraceID{1},
			Name:          "POST /api/checkout",
		})
		if res.Decision != tt.want {
			t.Errorf("rate %v: decision %v, want %v", tt.rate, res.Decision, tt.want)
		}
	}
}

func TestSampler_HonoursSampledParent(t *testing.T) {
	cfg := baseConfig()
	cfg.OtelSampleRate = 0
	parent := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}))
	res := sampler(cfg).ShouldSample(sdktrace.SamplingParameters{
		ParentContext: parent,
		TraceID:       trace.TraceID{1},
		Name:          "worker transaction.created",
	})
	if res.Decision != sdktrace.RecordAndSample {
		t.Errorf("expected sampled parent to be kept, got %v", res.Decision)
	}
}

func TestSetup_MetricsHandlerServesGatewayMetrics(t *testing.T) {
	shutdown, handler, err := Setup(context.Background(), baseConfig())
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	defer shutdown(context.Background()) //nolint:errcheck

	m, err := NewGatewayMetrics(otel.Meter("test"))
	if err != nil {
		t.Fatalf("NewGatewayMetrics: %v", err)
	}
	m.Record(context.Background(), "/transaction", OutcomeSuccess, 120*time.Millisecond)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/plain") {
		t.Errorf("expected text/plain content-type, got %q", ct)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "ratapay_requests_total") {
		t.Errorf("expected ratapay_requests_total in /metrics output")
	}
}

func TestGatewayMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background()) //nolint:errcheck

	m, err := NewGatewayMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewGatewayMetrics: %v", err)
	}
	ctx := context.Background()
	m.Record(ctx, "/transaction", OutcomeSuccess, 100*time.Millisecond)
	m.Record(ctx, "/transaction", OutcomeRejected, 200*time.Millisecond)
	m.Record(ctx, "/transaction/{ref}/refund", OutcomeSuccess, 50*time.Millisecond)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}

	var requests int64
	var observations uint64
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch data := md.Data.(type) {
			case metricdata.Sum[int64]:
				if md.Name == "ratapay_requests_total" {
					for _, dp := range data.DataPoints {
						requests += dp.Value
					}
				}
			case metricdata.Histogram[float64]:
				if md.Name == "ratapay_request_duration_seconds" {
					for _, dp := range data.DataPoints {
						observations += dp.Count
					}
				}
			}
		}
	}
	if requests != 3 {
		t.Errorf("expected 3 requests counted, got %d", requests)
	}
	if observations != 3 {
		t.Errorf("expected 3 duration observations, got %d", observations)
	}
}

func TestSetupSentry_NoDSN(t *testing.T) {
	if err := SetupSentry(baseConfig()); err != nil {
		t.Fatalf("expected no-op without DSN, got %v", err)
	}
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		Headers: map[string]string{
			"Authorization":  "Bearer tok",
			"X-Ratapay-Sign": "abc",
			"Content-Type":   "application/json",
		},
		Cookies: "ratapay_checkout=secret",
		Data:    `{"email":"buyer@mail.com","amount":50000}`,
	}}

	got := scrubEvent(event, nil)

	if got.Request.Headers["Authorization"] != redacted || got.Request.Headers["X-Ratapay-Sign"] != redacted {
		t.Errorf("credentials not scrubbed: %v", got.Request.Headers)
	}
	if got.Request.Headers["Content-Type"] != "application/json" {
		t.Errorf("unrelated header changed: %v", got.Request.Headers)
	}
	if got.Request.Cookies != "" {
		t.Errorf("cookies not dropped: %q", got.Request.Cookies)
	}
	if got.Request.Data != redacted {
		t.Errorf("payer email not scrubbed: %q", got.Request.Data)
	}

	if scrubEvent(&sentry.Event{}, nil).Request != nil {
		t.Error("event without request should pass through")
	}
	if body := scrubBody(`{"amount":50000}`); body != `{"amount":50000}` {
		t.Errorf("harmless body changed: %q", body)
	}
}
