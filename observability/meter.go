package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/lazyq/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (development, staging, production).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The caller shuts the provider down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.WithComponent("observability").Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns the package meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Instrument names.
const (
	MetricElements  = "lazyq.stage.elements"
	MetricErrors    = "lazyq.stage.errors"
	MetricDuration  = "lazyq.traversal.duration"
	MetricTraversal = "lazyq.traversal.active"
)

// Metrics holds the instruments recorded by Metered stages.
type Metrics struct {
	elements metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	elements, err := meter.Int64Counter(MetricElements,
		metric.WithDescription("Elements pulled through a stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricElements, err)
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Errors surfaced at a stage, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrors, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Time from first pull to exhaustion, error, or close"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricTraversal,
		metric.WithDescription("Traversals started but not yet finished"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricTraversal, err)
	}

	return &Metrics{
		elements: elements,
		errors:   errs,
		duration: duration,
		active:   active,
	}, nil
}

// TraversalStarted marks a traversal of stage as active.
func (m *Metrics) TraversalStarted(ctx context.Context, stage string) {
	m.active.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// TraversalFinished records the duration and outcome of a traversal.
func (m *Metrics) TraversalFinished(ctx context.Context, stage, status string, d time.Duration) {
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrStage, stage)))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrStatus, status),
	))
}

// RecordElement counts one element produced by stage.
func (m *Metrics) RecordElement(ctx context.Context, stage string) {
	m.elements.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, stage)))
}

// RecordError counts one error surfaced at stage.
func (m *Metrics) RecordError(ctx context.Context, stage, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrCode, code),
	))
}
