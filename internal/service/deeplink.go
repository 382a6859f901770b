package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/observability/metrics"
	"github.com/yoii-livecomm/socialauth/internal/observability/statsd"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

var (
	// ErrNotOAuthCallback is returned for URLs that are not <scheme>://oauth/<provider>/callback.
	ErrNotOAuthCallback = errors.New("not an oauth callback url")
	// ErrNoPendingFlow is returned when the provider's engine had nothing to resolve.
	ErrNoPendingFlow = errors.New("no pending oauth flow for callback")
)

// DeepLinkRouterOptions groups dependencies for DeepLinkRouter.
type DeepLinkRouterOptions struct {
	Scheme    string                   // Required: app scheme the OS forwards
	Receivers []ports.CallbackReceiver // One per provider with a web flow
	Telemetry SocialAuthTelemetry      // Optional; Now is unused
}

// DeepLinkRouter hands app re-entry URLs to the web flow of the provider they name.
type DeepLinkRouter struct {
	scheme    string
	receivers map[domainauth.SocialProvider]ports.CallbackReceiver
	logger    *slog.Logger
	metrics   statsd.Sink
}

// NewDeepLinkRouter constructs a router. It panics without a scheme.
func NewDeepLinkRouter(opts DeepLinkRouterOptions) *DeepLinkRouter {
	scheme := strings.TrimSuffix(strings.TrimSpace(opts.Scheme), "://")
	if scheme == "" {
		panic("deep link scheme is required")
	}
	receivers := make(map[domainauth.SocialProvider]ports.CallbackReceiver, len(opts.Receivers))
	for _, r := range opts.Receivers {
		if r != nil {
			receivers[r.Provider()] = r
		}
	}
	logger := opts.Telemetry.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := opts.Telemetry.Metrics
	if sink == nil {
		sink = statsd.Nop{}
	}
	return &DeepLinkRouter{
		scheme:    scheme,
		receivers: receivers,
		logger:    logger.With("component", "deeplink"),
		metrics:   sink,
	}
}

// Scheme returns the app scheme without the "://" suffix.
func (r *DeepLinkRouter) Scheme() string { return r.scheme }

// CallbackURL rebuilds the re-entry URL for provider with the given raw query.
func (r *DeepLinkRouter) CallbackURL(provider domainauth.SocialProvider, rawQuery string) string {
	u := fmt.Sprintf("%s://oauth/%s/callback", r.scheme, provider)
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// Route delivers rawURL to the matching provider's pending web flow.
func (r *DeepLinkRouter) Route(rawURL string) (err error) {
	provider, err := r.match(rawURL)
	if err != nil {
		r.logger.Debug("ignoring deep link", "error", err)
		return err
	}
	handled := false
	defer func() {
		failure := err
		if errors.Is(failure, ErrNoPendingFlow) {
			failure = nil
		}
		metrics.EmitCallback(r.metrics, metrics.CallbackMetric{Provider: string(provider), Handled: handled, Err: failure})
	}()

	recv, ok := r.receivers[provider]
	if !ok {
		return autherrors.Newf(autherrors.CodeProviderNotFound, provider, "No web flow registered for %s", provider)
	}
	if handled = recv.HandleOAuthCallback(rawURL); !handled {
		return ErrNoPendingFlow
	}
	return nil
}

// Cancel aborts provider's pending web flow, if any.
func (r *DeepLinkRouter) Cancel(provider domainauth.SocialProvider) error {
	recv, ok := r.receivers[provider]
	if !ok {
		return autherrors.Newf(autherrors.CodeProviderNotFound, provider, "No web flow registered for %s", provider)
	}
	recv.Cancel()
	return nil
}

// match extracts the provider segment. Unknown provider tags are reported as
// PROVIDER_NOT_FOUND rather than as foreign URLs.
func (r *DeepLinkRouter) match(rawURL string) (domainauth.SocialProvider, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotOAuthCallback, err)
	}
	if !strings.EqualFold(u.Scheme, r.scheme) || u.Host != "oauth" {
		return "", ErrNotOAuthCallback
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 2 || segments[1] != "callback" || segments[0] == "" {
		return "", ErrNotOAuthCallback
	}
	p, err := domainauth.ParseProvider(segments[0])
	if err != nil {
		return "", autherrors.Wrap(err, autherrors.CodeProviderNotFound, domainauth.SocialProvider(segments[0]), "Unknown provider")
	}
	return p, nil
}
