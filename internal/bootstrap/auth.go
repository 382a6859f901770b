package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/yoii-livecomm/socialauth/config"
	"github.com/yoii-livecomm/socialauth/internal/adapters/devauth"
	"github.com/yoii-livecomm/socialauth/internal/adapters/oidc"
	"github.com/yoii-livecomm/socialauth/internal/adapters/providers"
	"github.com/yoii-livecomm/socialauth/internal/adapters/weboauth"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// ProviderDeps groups dependencies for building provider adapters.
type ProviderDeps struct {
	Config  *config.AppConfig
	Browser ports.BrowserLauncher // Required when any provider has a client ID
	Logger  *slog.Logger
	// HTTPClient is shared by ID token discovery and Google token refresh.
	HTTPClient *http.Client
}

// ProviderSet is the result of BuildProviders.
type ProviderSet struct {
	Providers []ports.AuthProvider
	// Receivers are the web flows that accept OAuth callbacks.
	Receivers []ports.CallbackReceiver
}

// BuildProviders creates one adapter per enabled provider. A provider with a
// client ID gets a browser flow; dev mode adds a local SDK so every enabled
// provider can sign in without credentials.
func BuildProviders(deps ProviderDeps) (ProviderSet, error) {
	if deps.Config == nil {
		return ProviderSet{}, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var set ProviderSet
	for _, p := range domainauth.AllProviders() {
		pc, _ := deps.Config.Providers.Get(string(p))
		if !pc.Enabled {
			continue
		}
		opts, engine, err := providerOptions(p, pc, deps, logger)
		if err != nil {
			return ProviderSet{}, fmt.Errorf("configure %s: %w", p, err)
		}
		if opts.SDK == nil && opts.Web == nil {
			logger.Warn("skipping provider without credentials", "provider", string(p))
			continue
		}

		adapter, err := newAdapter(p, pc, opts, deps.HTTPClient)
		if err != nil {
			return ProviderSet{}, fmt.Errorf("create %s provider: %w", p, err)
		}
		set.Providers = append(set.Providers, adapter)
		if engine != nil {
			set.Receivers = append(set.Receivers, engine)
		}
		logger.Info("provider enabled", "provider", string(p), "method", string(adapter.PreferredMethod()))
	}
	return set, nil
}

func providerOptions(p domainauth.SocialProvider, pc config.ProviderConfig, deps ProviderDeps, logger *slog.Logger) (providers.Options, *weboauth.Engine, error) {
	opts := providers.Options{PreferWeb: pc.PreferWeb, Logger: logger}
	var engine *weboauth.Engine

	if pc.ClientID != "" {
		if deps.Browser == nil {
			return opts, nil, errors.New("browser launcher is required for web login")
		}
		e, err := weboauth.NewEngine(weboauth.Config{
			Provider:  p,
			ClientID:  pc.ClientID,
			AppScheme: deps.Config.AppScheme,
			Timeout:   deps.Config.Providers.OAuthTimeout,
			Browser:   deps.Browser,
			Logger:    logger,
			AuthURL:   pc.AuthURL,
		})
		if err != nil {
			return opts, nil, err
		}
		engine = e
		opts.Web = e
	}

	if deps.Config.IsDev {
		sdk, err := devauth.NewSDK(devauth.Config{Provider: p})
		if err != nil {
			return opts, nil, err
		}
		opts.SDK = sdk
	}

	if pc.VerifyIDToken && pc.ClientID != "" {
		v, err := oidc.NewVerifier(oidc.VerifierConfig{
			Provider:   p,
			ClientID:   pc.ClientID,
			Issuer:     pc.Issuer,
			HTTPClient: deps.HTTPClient,
		})
		if err != nil {
			return opts, nil, fmt.Errorf("id token verifier: %w", err)
		}
		opts.Verifier = v
	}
	return opts, engine, nil
}

//nolint:ireturn // each provider has its own adapter type.
func newAdapter(p domainauth.SocialProvider, pc config.ProviderConfig, opts providers.Options, client *http.Client) (ports.AuthProvider, error) {
	switch p {
	case domainauth.ProviderLine:
		return providers.NewLine(opts, pc.Fallback)
	case domainauth.ProviderFacebook:
		return providers.NewFacebook(opts)
	case domainauth.ProviderGoogle:
		return providers.NewGoogle(opts, providers.GoogleOptions{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			HTTPClient:   client,
		})
	case domainauth.ProviderApple:
		return providers.NewApple(opts)
	default:
		return nil, fmt.Errorf("unsupported provider %q", p)
	}
}
