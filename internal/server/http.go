package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	conf "github.com/streamforms/submission-exporter/config"
	"github.com/streamforms/submission-exporter/internal/errors"
	"github.com/streamforms/submission-exporter/internal/metrics"
	"github.com/streamforms/submission-exporter/internal/middleware"
	"github.com/streamforms/submission-exporter/registry"
	"github.com/streamforms/submission-exporter/registry/consul"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type Server struct {
	Mux      *chi.Mux
	server   *http.Server
	listener net.Listener
	exitChan chan error
	registry registry.ServiceRegistrator
}

// BuildServer constructs and configures the HTTP server: shared middleware
// stack, health and metrics endpoints, and optional Consul registration when
// a consul address is configured. Routes are mounted on Mux by the caller.
func BuildServer(config *conf.AppConfig, m *metrics.Metrics, reg *prometheus.Registry, log *slog.Logger, exitChan chan error) (*Server, error) {
	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Recovery(log))
	mux.Use(middleware.Logger(log))
	mux.Use(middleware.Metrics(m))

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Open a TCP listener on the configured address
	listener, err := net.Listen("tcp", config.Service.HTTPAddr)
	if err != nil {
		return nil, errors.Internal(
			err.Error(),
			errors.WithID("server.build.listen.error"),
		)
	}

	var registrator registry.ServiceRegistrator
	if config.Consul != nil && config.Consul.Address != "" {
		registrator, err = consul.NewConsulRegistry(config.Consul)
		if err != nil {
			_ = listener.Close()
			return nil, errors.Internal(
				err.Error(),
				errors.WithID("server.build.consul_registry.error"),
			)
		}
	}

	return &Server{
		Mux: mux,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		listener: listener,
		exitChan: exitChan,
		registry: registrator,
	}, nil
}

// Addr returns the bound listen address, useful when the configured port
// was 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start registers the service and serves until Stop or a fatal error.
func (s *Server) Start() {
	if s.registry != nil {
		if err := s.registry.Register(); err != nil {
			s.exitChan <- err
			return
		}
	}
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.exitChan <- errors.Internal(
			err.Error(),
			errors.WithID("server.start.serve.error"),
		)
	}
}

// Stop deregisters the service and drains in-flight requests before closing.
func (s *Server) Stop() {
	if s.registry != nil {
		if err := s.registry.Deregister(); err != nil {
			slog.Warn("submission_exporter.server.deregister_failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
	}
}
