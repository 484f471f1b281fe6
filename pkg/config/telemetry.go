package config

import (
	"context"
	"errors"
	"os"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mpapenbr/stintdeg/log"
	"github.com/mpapenbr/stintdeg/version"
)

type Telemetry struct {
	tp          *sdktrace.TracerProvider
	mp          *sdkmetric.MeterProvider
	registry    *prometheus.Registry
	metricsFile string
}

// SetupTelemetry installs the global trace and meter providers according to
// EnableTelemetry, TelemetryEndpoint and MetricsFile.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "stintdeg"),
		attribute.String("service.version", version.Version),
	)
	ret := &Telemetry{metricsFile: MetricsFile}
	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if EnableTelemetry {
		spanExporter, err := newSpanExporter(ctx)
		if err != nil {
			return nil, err
		}
		ret.tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spanExporter),
			sdktrace.WithResource(res))
		otel.SetTracerProvider(ret.tp)

		metricExporter, err := newMetricExporter(ctx)
		if err != nil {
			return nil, err
		}
		metricOpts = append(metricOpts,
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))
	}
	if MetricsFile != "" {
		ret.registry = prometheus.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(ret.registry))
		if err != nil {
			return nil, err
		}
		metricOpts = append(metricOpts, sdkmetric.WithReader(exp))
	}
	if EnableTelemetry || MetricsFile != "" {
		ret.mp = sdkmetric.NewMeterProvider(metricOpts...)
		otel.SetMeterProvider(ret.mp)
	}
	if EnableTelemetry {
		if err := otlpruntime.Start(
			otlpruntime.WithMeterProvider(ret.mp),
			otlpruntime.WithMinimumReadMemStatsInterval(time.Second)); err != nil {
			log.Warn("Could not start runtime metrics", log.ErrorField(err))
		}
	}
	return ret, nil
}

func newSpanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if TelemetryEndpoint == "stdout" {
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr))
	}
	return otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(TelemetryEndpoint),
		otlptracegrpc.WithInsecure())
}

func newMetricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if TelemetryEndpoint == "stdout" {
		return stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	}
	return otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
		otlpmetricgrpc.WithInsecure())
}

// WriteMetrics writes the current metrics to the metrics file (if configured).
func (t *Telemetry) WriteMetrics() error {
	if t == nil || t.registry == nil {
		return nil
	}
	return prometheus.WriteToTextfile(t.metricsFile, t.registry)
}

// Shutdown writes the metrics file and flushes the exporters.
func (t *Telemetry) Shutdown() {
	if t == nil {
		return
	}
	if err := t.WriteMetrics(); err != nil {
		log.Error("Could not write metrics file",
			log.String("file", t.metricsFile), log.ErrorField(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	if t.tp != nil {
		errs = append(errs, t.tp.Shutdown(ctx))
	}
	if t.mp != nil {
		errs = append(errs, t.mp.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		log.Warn("Error shutting down telemetry", log.ErrorField(err))
	}
}
