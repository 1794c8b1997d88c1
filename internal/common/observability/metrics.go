package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Its instruments are
// exported through the default Prometheus registry next to the promauto
// worker metrics.
type Observability struct {
	meterProvider  *metric.MeterProvider
	renderDuration otelmetric.Float64Histogram
	apiDuration    otelmetric.Float64Histogram
	apiRequests    otelmetric.Int64Counter
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o, err := newWithMeter(provider.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	o.meterProvider = provider
	return o, nil
}

// NewNoop returns an Observability whose recordings go nowhere.
func NewNoop() *Observability {
	return &Observability{}
}

func newWithMeter(meter otelmetric.Meter) (*Observability, error) {
	renderDuration, err := meter.Float64Histogram(
		"documents.render.duration",
		otelmetric.WithDescription("Time spent laying out PDF and XLSX documents"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	apiDuration, err := meter.Float64Histogram(
		"agency_api.request.duration",
		otelmetric.WithDescription("Agency API round trip time"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	apiRequests, err := meter.Int64Counter(
		"agency_api.requests",
		otelmetric.WithDescription("Agency API requests by method and outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		renderDuration: renderDuration,
		apiDuration:    apiDuration,
		apiRequests:    apiRequests,
	}, nil
}

func (o *Observability) RecordRender(ctx context.Context, kind, format string, d time.Duration) {
	if o == nil || o.renderDuration == nil {
		return
	}
	o.renderDuration.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("format", format),
	))
}

func (o *Observability) RecordAPIRequest(ctx context.Context, method string, status int, d time.Duration) {
	if o == nil || o.apiRequests == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	o.apiRequests.Add(ctx, 1, attrs)
	o.apiDuration.Record(ctx, float64(d.Milliseconds()), attrs)
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
