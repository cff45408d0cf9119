package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

const defaultShutdownTimeout = 5 * time.Second

// Server runs a handler until its context ends, then shuts down gracefully.
type Server struct {
	Addr    string
	Handler http.Handler
	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration
	// OnShutdown runs once the listener is closed, within the shutdown
	// timeout; typically stops the manager.
	OnShutdown func(ctx context.Context) error

	mu    sync.Mutex
	bound net.Addr
	ready chan struct{}
}

// ListenAddr waits until the server is listening and returns its address.
func (s *Server) ListenAddr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.readyCh():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound, nil
}

func (s *Server) readyCh() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready == nil {
		s.ready = make(chan struct{})
	}
	return s.ready
}

// Boot listens on Addr and serves until ctx is canceled.
func (s *Server) Boot(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	ready := s.readyCh()
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()
	close(ready)

	SetBaseContext(ctx)
	srv := &http.Server{Handler: s.Handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	if zlog != nil {
		zlog.Info().Str("addr", ln.Addr().String()).Msg("listening")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err = srv.Shutdown(shCtx)
	if s.OnShutdown != nil {
		err = errors.Join(err, s.OnShutdown(shCtx))
	}
	if zlog != nil {
		zlog.Info().Err(err).Msg("server stopped")
	}
	return err
}
