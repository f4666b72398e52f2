package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/tomb.v2"
)

const shutdownTimeout = 10 * time.Second

// Server runs one HTTP service until its context is cancelled.
type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(addr string, h http.Handler, log zerolog.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func (s *Server) Addr() string { return s.http.Addr }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or serving fails, then shuts down
// gracefully. A shutdown caused by ctx is not an error.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	t, _ := tomb.WithContext(ctx)
	t.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")
		if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	t.Go(func() error {
		<-t.Dying()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return s.http.Shutdown(shutdownCtx)
	})

	err := t.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
