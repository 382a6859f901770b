package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/adapters/backend"
	"github.com/yoii-livecomm/socialauth/internal/adapters/browser"
	httpx "github.com/yoii-livecomm/socialauth/internal/http"
	"github.com/yoii-livecomm/socialauth/internal/observability/prometheus"
	"github.com/yoii-livecomm/socialauth/internal/observability/statsd"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"github.com/yoii-livecomm/socialauth/internal/service"
	"golang.org/x/time/rate"
)

// ServiceContainer holds the wired application.
type ServiceContainer struct {
	Auth          *service.SocialAuthService
	DeepLinks     *service.DeepLinkRouter
	Backend       *backend.Client
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	// Sink fans out to StatsD and Prometheus.
	Sink       statsd.Sink
	Statsd     *statsd.Client
	Prometheus *prometheus.Sink // nil when disabled
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Store  ports.SessionStore
	// Browser overrides the system browser launcher.
	Browser ports.BrowserLauncher
	Logger  *slog.Logger
}

// BuildServices wires providers, the backend client and metrics into the
// orchestrator and deep-link router.
func BuildServices(deps ServiceDeps) (*ServiceContainer, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("session store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs, err := buildObservability(cfg.Observability, logger)
	if err != nil {
		return nil, err
	}

	client, err := buildBackendClient(cfg.Backend, logger)
	if err != nil {
		return nil, err
	}

	launcher := deps.Browser
	if launcher == nil {
		launcher = browser.NewSystem(logger)
	}
	set, err := BuildProviders(ProviderDeps{Config: cfg, Browser: launcher, Logger: logger})
	if err != nil {
		return nil, err
	}
	if len(set.Providers) == 0 {
		logger.Warn("no social providers enabled")
	}

	telemetry := service.SocialAuthTelemetry{Logger: logger, Metrics: obs.Sink}
	auth := service.NewSocialAuthService(service.SocialAuthServiceOptions{
		Providers: set.Providers,
		Deps:      service.SocialAuthDeps{Store: deps.Store, Exchanger: client},
		Telemetry: telemetry,
	})
	deepLinks := service.NewDeepLinkRouter(service.DeepLinkRouterOptions{
		Scheme:    cfg.AppScheme,
		Receivers: set.Receivers,
		Telemetry: telemetry,
	})

	return &ServiceContainer{
		Auth:          auth,
		DeepLinks:     deepLinks,
		Backend:       client,
		Observability: obs,
	}, nil
}

func buildObservability(cfg config.ObservabilityConfig, logger *slog.Logger) (ObservabilityContainer, error) {
	var obs ObservabilityContainer

	sd, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return obs, fmt.Errorf("create statsd client: %w", err)
	}
	obs.Statsd = sd

	var sinks []statsd.Sink
	if sd.Enabled() {
		sinks = append(sinks, sd)
	}
	if cfg.Prometheus.Enabled {
		obs.Prometheus = prometheus.New(cfg.Prometheus.Namespace, logger)
		sinks = append(sinks, obs.Prometheus)
	}
	obs.Sink = statsd.Multi(sinks...)
	return obs, nil
}

func buildBackendClient(cfg config.BackendConfig, logger *slog.Logger) (*backend.Client, error) {
	var limiter *rate.Limiter
	if cfg.RateLimited() {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	client, err := backend.NewClient(backend.Config{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.Timeout,
		Limiter:          limiter,
		ErrorMessagePath: cfg.ErrorMessagePath,
		UserAgent:        cfg.UserAgent,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}
	return client, nil
}

// Handler builds the loopback API around the container's services.
func (c *ServiceContainer) Handler(logger *slog.Logger) http.Handler {
	svcs := httpx.RouterServices{Auth: c.Auth, DeepLinks: c.DeepLinks, Logger: logger}
	if c.Observability.Prometheus != nil {
		svcs.Metrics = c.Observability.Prometheus.Handler()
	}
	return httpx.NewRouter(svcs)
}

// Close releases the metrics connection.
func (c *ServiceContainer) Close() error {
	if c == nil || c.Observability.Statsd == nil {
		return nil
	}
	return c.Observability.Statsd.Close()
}
