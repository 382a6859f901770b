package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yoii-livecomm/socialauth/config"
	"golang.org/x/sync/errgroup"
)

// writeMargin is added to the OAuth timeout when deriving a write timeout, so a
// login that waits out its flow can still send its response.
const writeMargin = 30 * time.Second

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	HTTP config.HTTPConfig
	// OAuthTimeout bounds a blocking login request.
	OAuthTimeout time.Duration
}

// NewHTTPServer builds the API server. A zero write timeout is derived from the
// OAuth timeout because login requests block for a whole browser flow.
func NewHTTPServer(cfg HTTPServerConfig, handler http.Handler) *http.Server {
	addr := cfg.HTTP.Addr
	// Guard against empty addr to avoid listening on every interface
	if addr == "" {
		addr = "127.0.0.1:8765"
	}
	write := cfg.HTTP.WriteTimeout
	if write <= 0 && cfg.OAuthTimeout > 0 {
		write = cfg.OAuthTimeout + writeMargin
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}
}

// RunHTTPServer listens on server.Addr and serves until ctx is done, then
// shuts down within shutdownTimeout. Bind failures are returned immediately.
func RunHTTPServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	return ServeListener(ctx, server, ln, shutdownTimeout, logger)
}

// ServeListener is RunHTTPServer on an existing listener.
func ServeListener(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	return g.Wait()
}
