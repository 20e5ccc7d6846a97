package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Config holds the static configuration for the relay server
type Config struct {
	ListenHost string
	ListenPort int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	UpstreamTimeout time.Duration
	MaxHeaderBytes  int
	MaxBodyBytes    int64
}

// Server is the relay HTTP server
type Server struct {
	httpServer *http.Server
}

// New creates a new relay server from cfg
func New(cfg Config) *Server {
	mux := http.NewServeMux()
	mux.Handle("POST /fetch", NewFetchHandler(cfg.UpstreamTimeout, cfg.MaxBodyBytes))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort),
			ReadTimeout:    cfg.ReadTimeout,
			WriteTimeout:   cfg.WriteTimeout,
			Handler:        http.TimeoutHandler(mux, cfg.RequestTimeout, ""),
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
	}
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. Cancellation triggers a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("Starting relay", "addr", s.httpServer.Addr)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "err", err)
			return err
		}
		slog.Info("Relay shut down gracefully")
		return nil

	case err := <-serverErr:
		if err != nil {
			slog.Error("Relay encountered error", "err", err)
		}
		return err
	}
}
