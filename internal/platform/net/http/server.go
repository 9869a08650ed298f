package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"enscheck/internal/platform/config"
	"enscheck/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is an http.Server over a chi mux that stops with its context
type Server struct {
	mux             *chi.Mux
	srv             *http.Server
	shutdownTimeout time.Duration
}

// NewServer reads PORT, READ_HEADER_TIMEOUT, WRITE_TIMEOUT and SHUTDOWN_TIMEOUT from cfg.
// WRITE_TIMEOUT defaults to 0 because a resolve request waits out its batch delays
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("PORT", ":4000")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	m := chi.NewRouter()
	return &Server{
		mux: m,
		srv: &http.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: cfg.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
			WriteTimeout:      cfg.MayDuration("WRITE_TIMEOUT", 0),
		},
		shutdownTimeout: cfg.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Router is the module facing view of the mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr is the configured listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Run listens on Addr and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logger.Named("http")
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		done <- s.srv.Shutdown(sctx)
	}()

	log.Info().Str("addr", ln.Addr().String()).Msg("http listening")
	if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	err := <-done
	log.Info().Err(err).Msg("http stopped")
	return err
}
