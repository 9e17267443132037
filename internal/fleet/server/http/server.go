package http

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rus1K7/Airport/pkg/log"
	"github.com/Rus1K7/Airport/pkg/options"
)

// ReadinessFunc reports whether the service can take work.
type ReadinessFunc func() bool

// Server exposes the vehicle API, health checks and metrics.
type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

// NewServer mounts api under its route prefix next to /healthz, /readyz and /metrics.
func NewServer(opts *options.HttpOptions, api *API, ready ReadinessFunc) *Server {
	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	if api != nil {
		api.Register(r)
	}

	return &Server{
		server: &http.Server{
			Addr:        opts.Addr,
			Handler:     r,
			ReadTimeout: opts.ReadTimeout,
		},
		options: opts,
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.server.Handler }

func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen(s.options.Network, s.server.Addr)
	if err != nil {
		return err
	}
	log.Info("Starting HTTP Server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.options.ShutdownTimeout)
		defer cancel()
		log.Info("Shutting down HTTP Server")
		return s.server.Shutdown(shutdownCtx)
	}
}
