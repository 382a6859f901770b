package weboauth

import (
	"fmt"
	"strings"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"golang.org/x/oauth2"
)

// DefaultAppScheme is the custom URL scheme the app registers for OAuth re-entry.
const DefaultAppScheme = "yoii-livecomm"

// providerEndpoint describes how to start a browser flow for one provider.
type providerEndpoint struct {
	endpoint oauth2.Endpoint
	scopes   []string
	params   map[string]string
	// idTokenCredential marks providers whose browser flow yields an ID token instead of an access token.
	idTokenCredential bool
}

var endpoints = map[domainauth.SocialProvider]providerEndpoint{
	domainauth.ProviderLine: {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://access.line.me/oauth2/v2.1/authorize",
			TokenURL: "https://api.line.me/oauth2/v2.1/token",
		},
		scopes: []string{"profile", "openid", "email"},
	},
	domainauth.ProviderFacebook: {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v18.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v18.0/oauth/access_token",
		},
		// Facebook expects a comma-separated scope list.
		scopes: []string{"public_profile,email"},
	},
	domainauth.ProviderGoogle: {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
		scopes: []string{"profile", "email"},
	},
	domainauth.ProviderApple: {
		endpoint: oauth2.Endpoint{
			AuthURL:  "https://appleid.apple.com/auth/authorize",
			TokenURL: "https://appleid.apple.com/auth/token",
		},
		// Requesting name/email scopes forces form_post, which a custom scheme cannot receive.
		params: map[string]string{
			"response_type": "code id_token",
			"response_mode": "fragment",
		},
		idTokenCredential: true,
	},
}

// Endpoint returns the OAuth endpoints used for a provider.
func Endpoint(p domainauth.SocialProvider) (oauth2.Endpoint, bool) {
	ep, ok := endpoints[p]
	return ep.endpoint, ok
}

// RedirectURI returns the deep-link callback URI for a provider.
func RedirectURI(scheme string, p domainauth.SocialProvider) string {
	return fmt.Sprintf("%s://oauth/%s/callback", strings.TrimSuffix(scheme, "://"), p)
}

// authRequest is the per-engine template for authorization URLs.
type authRequest struct {
	oauth             *oauth2.Config
	opts              []oauth2.AuthCodeOption
	idTokenCredential bool
}

// newAuthRequest assembles the oauth2 configuration and provider-specific URL options.
func newAuthRequest(cfg Config) (authRequest, error) {
	ep, ok := endpoints[cfg.Provider]
	if !ok && cfg.AuthURL == "" {
		return authRequest{}, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if cfg.AuthURL != "" {
		ep.endpoint.AuthURL = cfg.AuthURL
	}

	oc := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: RedirectURI(cfg.AppScheme, cfg.Provider),
		Scopes:      append([]string(nil), ep.scopes...),
		Endpoint:    ep.endpoint,
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(ep.params))
	for k, v := range ep.params {
		opts = append(opts, oauth2.SetAuthURLParam(k, v))
	}
	return authRequest{oauth: oc, opts: opts, idTokenCredential: ep.idTokenCredential}, nil
}

// url renders the authorization URL for one flow.
func (r authRequest) url(state string) string {
	return r.oauth.AuthCodeURL(state, r.opts...)
}
