package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type HealthServer struct {
	monitor *Monitor
	server  *http.Server
	logger  *zap.Logger
}

func NewHealthServer(monitor *Monitor, port int, logger *zap.Logger) *HealthServer {
	if port == 0 {
		port = 8080
	}

	h := &HealthServer{
		monitor: monitor,
		logger:  logger.Named("health"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.healthHandler)
	mux.HandleFunc("/status", h.statusHandler)

	h.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

func (h *HealthServer) Start() {
	h.logger.Info("Health check server starting", zap.String("addr", h.server.Addr))
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("Health server error", zap.Error(err))
		}
	}()
}

func (h *HealthServer) Stop(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *HealthServer) Handler() http.Handler {
	return h.server.Handler
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}
