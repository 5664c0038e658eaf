// Package server provides the small HTTP surface both daemons expose:
// health probes, Prometheus metrics and optional JSON endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetota-io/fleetota/pkg/log"
	genericoptions "github.com/fleetota-io/fleetota/pkg/options"
)

// Server serves operational endpoints next to the daemon's main loop.
type Server struct {
	srv    *http.Server
	router *mux.Router
	log    log.Logger
}

// New builds a server with /healthz, /readyz and /metrics preinstalled.
func New(opts *genericoptions.HTTPOptions, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", ok).Methods(http.MethodGet)
	router.HandleFunc("/readyz", ok).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return &Server{
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		router: router,
		log:    logger.WithName("http").WithValues("addr", opts.Addr),
	}
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Handle installs an additional GET endpoint.
func (s *Server) Handle(path string, handler http.Handler) {
	s.router.Handle(path, handler).Methods(http.MethodGet)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
