package evbroker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records broker metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEmit records an emission call and its delivery mode.
	RecordEmit(ctx context.Context, ns string, mode DeliveryMode)

	// RecordInvocation records a single subscriber invocation with its
	// duration and error status.
	RecordInvocation(ctx context.Context, ns string, duration time.Duration, err error)
}

// NoopMetrics is a MetricsRecorder that records nothing.
type NoopMetrics struct{}

// RecordEmit does nothing.
func (NoopMetrics) RecordEmit(ctx context.Context, ns string, mode DeliveryMode) {}

// RecordInvocation does nothing.
func (NoopMetrics) RecordInvocation(ctx context.Context, ns string, duration time.Duration, err error) {
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	emits          metric.Int64Counter
	invocations    metric.Int64Counter
	handlerErrors  metric.Int64Counter
	handlerLatency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("evbroker")

	emits, err := meter.Int64Counter("evbroker.emits",
		metric.WithDescription("Number of emission calls"),
	)
	if err != nil {
		return nil, err
	}

	invocations, err := meter.Int64Counter("evbroker.handler.invocations",
		metric.WithDescription("Number of subscriber invocations"),
	)
	if err != nil {
		return nil, err
	}

	handlerErrors, err := meter.Int64Counter("evbroker.handler.errors",
		metric.WithDescription("Number of subscriber invocation failures"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("evbroker.handler.latency_ms",
		metric.WithDescription("Subscriber invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		emits:          emits,
		invocations:    invocations,
		handlerErrors:  handlerErrors,
		handlerLatency: handlerLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordEmit records an emission call.
func (m *otelMetrics) RecordEmit(ctx context.Context, ns string, mode DeliveryMode) {
	m.emits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", ns),
		attribute.String("mode", mode.String()),
	))
}

// RecordInvocation records a subscriber invocation.
func (m *otelMetrics) RecordInvocation(ctx context.Context, ns string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("namespace", ns),
	}

	m.invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.handlerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.handlerErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
