package diagnostics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// ShutdownTimeout bounds how long open /stats feeds may delay shutdown
const ShutdownTimeout = 2 * time.Second

// Listen binds addr so address errors surface before the render loop starts
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.New("listening for diagnostics failed").
			WithTag("addr", addr).
			Wrap(err)
	}
	return ln, nil
}

// Serve answers the diagnostics routes on ln until ctx is cancelled. It
// returns nil after a shutdown triggered by ctx.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	addr := ln.Addr().String()
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	stopped := make(chan struct{})
	defer close(stopped)

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logs.Warn(errors.New("shutting down diagnostics server failed").
				WithTag("addr", addr).
				Wrap(err))
		}
	}()

	logs.WithTag("addr", addr).Info("starting diagnostics server")

	if err := srv.Serve(ln); err != http.ErrServerClosed {
		return errors.New("diagnostics server stopped").
			WithTag("addr", addr).
			Wrap(err)
	}

	logs.WithTag("addr", addr).Info("stopping diagnostics server")
	return nil
}
