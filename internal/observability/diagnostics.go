package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DiagnosticsServer exposes /healthz and Prometheus /metrics over HTTP.
// It is meant for long-running CI jobs that want scrape visibility into a
// batch of analyses; one server per process.
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
	meter    metric.Meter
}

// NewDiagnosticsServer starts an HTTP server at addr and returns it
// together with the meter backing the /metrics endpoint.
func NewDiagnosticsServer(addr string) (*DiagnosticsServer, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	var lc net.ListenConfig

	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}

	go func() {
		serveErr := srv.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Warn("diagnostics server stopped", "error", serveErr)
		}
	}()

	return &DiagnosticsServer{
		server:   srv,
		listener: listener,
		meter:    provider.Meter("apidrift"),
	}, nil
}

// Meter returns the meter whose instruments feed /metrics.
func (s *DiagnosticsServer) Meter() metric.Meter {
	return s.meter
}

// Addr returns the bound listen address.
func (s *DiagnosticsServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server.
func (s *DiagnosticsServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown diagnostics server: %w", err)
	}

	return nil
}
