package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Server wraps the HTTP server for the prediction API
type Server struct {
	srv *http.Server
}

// NewServer creates an HTTP server bound to addr serving the handler's routes
func NewServer(addr string, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe serves until the context is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	log.Printf("API: Listening on %s", s.srv.Addr)

	go func() {
		<-ctx.Done()
		log.Println("API: Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("API: HTTP server shutdown error: %v", err)
		}
	}()

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}
