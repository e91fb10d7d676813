package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// SHUTDOWN_TIMEOUT bounds graceful shutdown.
const SHUTDOWN_TIMEOUT = 5 * time.Second

type OccupancyHttpServer struct {
	router *Router
	srv    *http.Server
	logger zerolog.Logger
}

func NewOccupancyHttpServer(addr string, router *Router, muxRouter *mux.Router, logger zerolog.Logger) *OccupancyHttpServer {
	return &OccupancyHttpServer{
		router: router,
		srv: &http.Server{
			Addr:              addr,
			Handler:           muxRouter,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "OccupancyHttpServer").Logger(),
	}
}

// Start registers the routes and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *OccupancyHttpServer) Start(ctx context.Context) error {
	s.router.RegisterRoutes()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("starting server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("server exiting")
	return nil
}
