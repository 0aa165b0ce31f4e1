package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/recipebox/backend/config"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/router"
)

// Server represents the HTTP server
type Server struct {
	cfg   *config.Config
	http  *http.Server
	mu    sync.RWMutex
	ready bool
}

// New builds the router from deps and wraps it in an HTTP server. The
// server's own readiness is added to the readiness checks.
func New(cfg *config.Config, deps router.Dependencies) *Server {
	s := &Server{cfg: cfg}

	checks := map[string]api.ReadinessCheck{"server": s.checkReady}
	for name, check := range deps.ReadinessChecks {
		checks[name] = check
	}
	deps.ReadinessChecks = checks

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// SetReady flips the readiness reported by /ready
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) checkReady(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return errors.New("server is not accepting traffic")
	}
	return nil
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.SetReady(true)
		log.WithField("addr", l.Addr().String()).Info("server listening")
		if err := s.http.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// Start listens on the configured address and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, l)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	log.Info("shutting down server")
	return s.http.Shutdown(shutdownCtx)
}
