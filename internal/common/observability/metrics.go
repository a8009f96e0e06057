package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
	transitions    otelmetric.Int64Counter
}

type options struct {
	jaegerEndpoint string
	registerer     promclient.Registerer
	processors     []sdktrace.SpanProcessor
}

type Option func(*options)

// WithJaegerEndpoint exports spans to a jaeger collector, e.g.
// http://localhost:14268/api/traces.
func WithJaegerEndpoint(endpoint string) Option {
	return func(o *options) { o.jaegerEndpoint = endpoint }
}

// WithRegisterer registers the metric exporter somewhere other than the
// default prometheus registry.
func WithRegisterer(r promclient.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithSpanProcessor adds a span processor to the tracer provider.
func WithSpanProcessor(p sdktrace.SpanProcessor) Option {
	return func(o *options) { o.processors = append(o.processors, p) }
}

func New(serviceName string, opts ...Option) *Observability {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}

	o := &Observability{}
	o.setupTracing(serviceName, cfg)

	var promOpts []prometheus.Option
	if cfg.registerer != nil {
		promOpts = append(promOpts, prometheus.WithRegisterer(cfg.registerer))
	}
	exporter, err := prometheus.New(promOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	// Instrument names use underscores so the prometheus exporter publishes
	// them unchanged.
	jobCounter, _ := meter.Int64Counter(
		"jobs_processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs_duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	transitions, _ := meter.Int64Counter(
		"funnel_transitions",
		otelmetric.WithDescription("Funnel state transitions"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.jobCounter = jobCounter
	o.jobDuration = jobDuration
	o.transitions = transitions
	return o
}

func (o *Observability) setupTracing(serviceName string, cfg *options) {
	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	}
	if cfg.jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.jaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		}
	}
	for _, p := range cfg.processors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(p))
	}

	o.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(serviceName)
}

// StartSpan opens a span named name under ctx. Callers end it.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// RecordTransition counts a funnel transition into state.
func (o *Observability) RecordTransition(ctx context.Context, category, state string) {
	if o.transitions != nil {
		o.transitions.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("category", category),
			attribute.String("state", state),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
}
