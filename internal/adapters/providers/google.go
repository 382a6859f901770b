package providers

import (
	"context"
	"net/http"

	"github.com/yoii-livecomm/socialauth/internal/adapters/weboauth"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"golang.org/x/oauth2"
)

var googleScopes = []string{"openid", "profile", "email"}

// GoogleOptions configures token refresh against Google's token endpoint.
type GoogleOptions struct {
	ClientID string
	// ClientSecret is empty for installed-app clients.
	ClientSecret string
	// TokenURL overrides Google's token endpoint.
	TokenURL   string
	HTTPClient *http.Client
}

// Google signs in through the browser by default and refreshes provider tokens
// with the refresh token returned by the flow.
type Google struct {
	core
	oauth      *oauth2.Config
	httpClient *http.Client
}

var _ ports.AuthProvider = (*Google)(nil)

func NewGoogle(opts Options, g GoogleOptions) (*Google, error) {
	ep, _ := weboauth.Endpoint(domainauth.ProviderGoogle)
	if g.TokenURL != "" {
		ep.TokenURL = g.TokenURL
	}
	ep.AuthStyle = oauth2.AuthStyleInParams

	gp := &Google{
		oauth: &oauth2.Config{
			ClientID:     g.ClientID,
			ClientSecret: g.ClientSecret,
			Endpoint:     ep,
			Scopes:       googleScopes,
		},
		httpClient: g.HTTPClient,
	}
	if err := gp.setup(domainauth.ProviderGoogle, opts); err != nil {
		return nil, err
	}
	return gp, nil
}

func (g *Google) Login(ctx context.Context) (domainauth.SocialAuthResult, error) {
	return g.login(ctx, googleScopes)
}

func (g *Google) Logout(ctx context.Context) error {
	return g.logoutNative(ctx)
}

// RefreshToken refreshes through the SDK when present, otherwise by trading the
// cached refresh token at the token endpoint.
func (g *Google) RefreshToken(ctx context.Context) (string, bool) {
	if g.sdk != nil {
		if tok, err := g.sdk.RefreshAccessToken(ctx); err == nil && tok != "" {
			g.tokens.update(tok, "", zeroTime)
			return tok, true
		}
	}

	rt := g.tokens.refresh()
	if rt == "" || g.oauth.ClientID == "" {
		return "", false
	}
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}
	tok, err := g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: rt}).Token()
	if err != nil {
		g.logger.Warn("google token refresh failed", "error", err)
		return "", false
	}
	g.tokens.update(tok.AccessToken, tok.RefreshToken, tok.Expiry)
	return tok.AccessToken, true
}
