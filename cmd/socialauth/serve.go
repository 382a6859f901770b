package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/bootstrap"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sign-in daemon and its loopback API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

// runtime is an opened session store plus the services built on it.
type runtime struct {
	store     bootstrap.SessionStoreHandle
	container *bootstrap.ServiceContainer
	logger    *slog.Logger
}

func openRuntime(ctx context.Context, a *app) (*runtime, error) {
	handle, err := bootstrap.OpenSessionStore(ctx, a.cfg.Session, a.logger)
	if err != nil {
		return nil, err
	}
	container, err := bootstrap.BuildServices(bootstrap.ServiceDeps{Config: &a.cfg, Store: handle.Store, Logger: a.logger})
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	return &runtime{store: handle, container: container, logger: a.logger}, nil
}

func (rt *runtime) close(ctx context.Context) {
	if err := rt.container.Close(); err != nil {
		rt.logger.ErrorContext(ctx, "close metrics failed", "error", err)
	}
	if err := rt.store.Close(); err != nil {
		rt.logger.ErrorContext(ctx, "close session store failed", "error", err)
	}
}

// serveFunc returns a function serving the API until its context is done.
func (rt *runtime) serveFunc(cfg *config.AppConfig) func(ctx context.Context) error {
	srv := bootstrap.NewHTTPServer(bootstrap.HTTPServerConfig{
		HTTP:         cfg.HTTP,
		OAuthTimeout: cfg.Providers.OAuthTimeout,
	}, rt.container.Handler(rt.logger))
	return func(ctx context.Context) error {
		return bootstrap.RunHTTPServer(ctx, srv, cfg.HTTP.ShutdownTimeout, rt.logger)
	}
}

func runServe(ctx context.Context, a *app) error {
	logStartupInfo(ctx, a.logger, &a.cfg)

	rt, err := openRuntime(ctx, a)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	// A provider whose SDK fails here is retried on its first login.
	if err := rt.container.Auth.Initialize(ctx); err != nil {
		a.logger.WarnContext(ctx, "provider initialization incomplete", "error", err)
	}

	return rt.serveFunc(&a.cfg)(ctx)
}

// runLocalLogin serves the callback API for the duration of one login so the
// deeplink command can reach this process.
func runLocalLogin(ctx context.Context, a *app, p domainauth.SocialProvider) (domainauth.BackendAuthResponse, error) {
	rt, err := openRuntime(ctx, a)
	if err != nil {
		return domainauth.BackendAuthResponse{}, err
	}
	defer rt.close(ctx)

	run := rt.serveFunc(&a.cfg)
	serveCtx, stopServing := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(serveCtx)

	g.Go(func() error {
		if err := run(gctx); err != nil {
			return fmt.Errorf("callback listener (is a daemon already running? try --daemon): %w", err)
		}
		return nil
	})

	var (
		resp     domainauth.BackendAuthResponse
		loginErr error
	)
	g.Go(func() error {
		defer stopServing()
		resp, loginErr = rt.container.Auth.LoginWithProvider(gctx, p)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domainauth.BackendAuthResponse{}, err
	}
	return resp, loginErr
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting socialauth",
		"dev", cfg.IsDev,
		"app_scheme", cfg.AppScheme,
		"session_driver", string(cfg.Session.Driver),
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Backend.APIBaseURL,
	)
	if !cfg.HTTP.IsLoopback() {
		logger.WarnContext(ctx, "HTTP API is reachable beyond loopback; anyone on the network can sign in as this device", "addr", cfg.HTTP.Addr)
	}
}
