package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusUnreachable  = "unreachable"
)

// storePingTimeout bounds the account store check of a probe.
const storePingTimeout = 2 * time.Second

// HealthChecker serves the liveness and readiness probes of the HTTP
// transport. Readiness requires the ready flag, a running server context
// and a reachable account store.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker returns a checker that starts out ready. sc may be nil,
// in which case only the ready flag is checked.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{serverContext: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady flips readiness, e.g. to drain traffic before shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of every probe.
type HealthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

// evaluate runs all checks. The overall status names the first failing
// condition in order: ready flag, shutdown, store.
func (h *HealthChecker) evaluate(ctx context.Context) HealthResponse {
	resp := HealthResponse{
		Status: healthStatusOK,
		Checks: map[string]string{
			"ready":    healthStatusOK,
			"shutdown": healthStatusOK,
			"store":    healthStatusOK,
		},
	}

	fail := func(check, value, status string) {
		resp.Checks[check] = value
		if resp.Status == healthStatusOK {
			resp.Status = status
		}
	}

	if !h.ready.Load() {
		fail("ready", healthStatusNotReady, healthStatusNotReady)
	}
	if h.serverContext != nil && h.serverContext.IsShutdown() {
		fail("shutdown", healthStatusShuttingDown, healthStatusShuttingDown)
	}
	if !h.storeReachable(ctx) {
		fail("store", healthStatusUnreachable, healthStatusNotReady)
	}
	return resp
}

func (h *HealthChecker) storeReachable(ctx context.Context) bool {
	if h.serverContext == nil || h.serverContext.Store() == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()
	return h.serverContext.Store().Ping(ctx) == nil
}

func writeHealth(w http.ResponseWriter, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Status == healthStatusOK {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// LivenessHandler serves /healthz. It only reports that the process answers.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, h.evaluate(r.Context()))
	})
}

// DetailedHealthHandler serves /healthz/detailed: the readiness checks plus
// uptime.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h.evaluate(r.Context())
		resp.Uptime = time.Since(h.startTime).Truncate(time.Second).String()
		writeHealth(w, resp)
	})
}

// RegisterHealthEndpoints mounts the three probes on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}
