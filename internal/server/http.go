package server

import (
	"context"
	"net"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calmux/internal/instrumentation"
)

// MCPEndpoint is the path of the streamable HTTP transport.
const MCPEndpoint = "/mcp"

// HTTPServer serves the MCP streamable HTTP transport and health endpoints.
type HTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	httpServer       *http.Server
	healthChecker    *HealthChecker
	metrics          *instrumentation.Metrics
	disableStreaming bool
}

// NewHTTPServer creates an HTTP server for mcpServer.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, disableStreaming bool) *HTTPServer {
	return &HTTPServer{
		mcpServer:        mcpServer,
		disableStreaming: disableStreaming,
	}
}

// SetHealthChecker registers /healthz, /readyz and /healthz/detailed.
func (s *HTTPServer) SetHealthChecker(h *HealthChecker) {
	s.healthChecker = h
}

// SetMetrics records every HTTP request in m.
func (s *HTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// Handler returns the routed handler without binding a listener.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	opts := []mcpserver.StreamableHTTPOption{
		mcpserver.WithEndpointPath(MCPEndpoint),
		mcpserver.WithHTTPContextFunc(UserFromRequest),
	}
	if s.disableStreaming {
		opts = append(opts, mcpserver.WithDisableStreaming(true))
	}
	mux.Handle(MCPEndpoint, mcpserver.NewStreamableHTTPServer(s.mcpServer, opts...))

	if s.healthChecker != nil {
		s.healthChecker.RegisterHealthEndpoints(mux)
	}

	return s.instrumentationMiddleware(mux)
}

// Start starts the HTTP server and blocks until it stops.
func (s *HTTPServer) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Serve is like Start on an existing listener.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps server-sent event streams working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *HTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
