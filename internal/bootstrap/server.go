package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type options struct {
	startup []func(context.Context)
}

type Option func(*options)

// WithStartup runs fn in its own goroutine once the listener is bound, so
// the handler can answer while fn is still in flight.
func WithStartup(fn func(context.Context)) Option {
	return func(o *options) {
		o.startup = append(o.startup, fn)
	}
}

// Run serves handler on addr and blocks until ctx is canceled or the server
// fails. On cancellation it shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	for _, fn := range o.startup {
		go fn(ctx)
	}

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve http %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}
