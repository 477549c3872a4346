package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/symexlab/statoor/pkg/config"
	"github.com/symexlab/statoor/pkg/query"
	"github.com/symexlab/statoor/pkg/stats"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the dashboard HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.ServerConfig
	engine     *query.Engine
	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewServer creates a dashboard server for one run directory. The
// legend is immutable configuration shared across requests.
func NewServer(
	log logrus.FieldLogger,
	cfg *config.ServerConfig,
	runDir string,
	legend *stats.Legend,
) Server {
	return &server{
		log:    log.WithField("component", "api"),
		cfg:    cfg,
		engine: query.New(log, runDir, legend),
	}
}

// Start binds the listener and serves requests in the background.
func (s *server) Start(ctx context.Context) error {
	router := s.buildRouter()

	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind the listener synchronously so we fail fast on port conflicts.
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.log.WithField("listen", s.cfg.Listen).
			Info("Dashboard server starting")

		if err := s.httpServer.Serve(ln); err != nil &&
			err != http.ErrServerClosed {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.wg.Wait()

	s.log.Info("Dashboard server stopped")

	return nil
}
