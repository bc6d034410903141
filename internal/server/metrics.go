package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/teemow/calmux/internal/instrumentation"
)

const (
	metricsReadHeaderTimeout = 10 * time.Second
	metricsWriteTimeout      = 10 * time.Second
	metricsIdleTimeout       = 60 * time.Second
)

// MetricsServer serves /metrics on its own listener, apart from the MCP
// endpoint.
type MetricsServer struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
}

// NewMetricsServer returns a server for addr. It fails when instrumentation
// is disabled, since there would be nothing to scrape.
func NewMetricsServer(addr string, provider *instrumentation.Provider) (*MetricsServer, error) {
	if provider == nil || !provider.Enabled() {
		return nil, errors.New("metrics server requires enabled instrumentation")
	}

	// The otel prometheus exporter registers with the default registry,
	// which promhttp.Handler serves.
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		httpServer: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
			WriteTimeout:      metricsWriteTimeout,
			IdleTimeout:       metricsIdleTimeout,
		},
	}, nil
}

// Listen binds the address. Bind errors surface here rather than in Serve.
func (s *MetricsServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Serve blocks until Shutdown. It returns nil after a clean shutdown.
func (s *MetricsServer) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	slog.Info("serving metrics", "addr", s.Addr())
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server. It is a no-op before Listen.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr is the bound address after Listen, the configured one before.
func (s *MetricsServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
