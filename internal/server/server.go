// Package server provides the development HTTP server: it serves the output
// directory, a health endpoint and Prometheus metrics. It never touches the
// build itself; rebuilding is the watcher's job.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bundlectl/bundlectl/internal/logging"
)

type Server struct {
	addr string
	dir  string
	log  *logging.Logger
}

func New(addr, dir string) *Server {
	return &Server{
		addr: addr,
		dir:  dir,
		log:  logging.NewLogger(logging.Config{Level: logging.LogLevelError}),
	}
}

func (s *Server) WithLogger(log *logging.Logger) *Server {
	s.log = log
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(http.Dir(s.dir)))

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Router(),
	}

	errs := make(chan error, 1)
	go func() {
		s.log.Infof("serving %s on http://%s", s.dir, s.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
