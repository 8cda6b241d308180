// Package telemetry wires the OpenTelemetry metrics SDK to a Prometheus
// exporter and the Go runtime instrumentation, giving every binary the
// same /metrics surface regardless of which long-running loop it runs.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Provider bundles the meter provider backing every binary's instruments
// and the Prometheus registry it exports through.
type Provider struct {
	MeterProvider *metric.MeterProvider
	registry      *prometheus.Registry
}

// New builds a MeterProvider backed by a Prometheus exporter registered
// into a fresh registry, and starts the Go runtime instrumentation
// (goroutines, heap, GC pauses) reporting through it.
func New(serviceName string) (*Provider, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	mp := metric.NewMeterProvider(metric.WithReader(exporter))

	if err := runtime.Start(runtime.WithMeterProvider(mp), runtime.WithMinimumReadMemStatsInterval(0)); err != nil {
		return nil, fmt.Errorf("starting runtime instrumentation: %w", err)
	}

	return &Provider{MeterProvider: mp, registry: registry}, nil
}

// Handler returns the /metrics HTTP handler callers should mount on the
// same ServeMux as the API routes (or a dedicated port for non-HTTP
// binaries like the reconciler and GitOps worker).
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.MeterProvider.Shutdown(ctx)
}
