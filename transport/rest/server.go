package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Server - the status HTTP server.
type Server struct {
	server *http.Server
}

func New(port string, handlers Handlers) *Server {
	return &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      NewRouter(handlers),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
	}
}

func NewRouter(handlers Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", handlers.PingHandler)
	mux.HandleFunc("GET /stats", handlers.StatsHandler)

	return mux
}

// Start - serves until Shutdown is called.
func (that *Server) Start() error {
	if err := that.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) Shutdown(ctx context.Context) error {
	if err := that.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
