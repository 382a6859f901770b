package providers

import (
	"context"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

var lineScopes = []string{"profile", "openid", "email"}

// Line signs in through the LINE SDK and can fall back to the browser flow.
type Line struct {
	core
	fallback bool
}

var _ ports.AuthProvider = (*Line)(nil)

// NewLine builds the LINE adapter. With fallback set, a failed native login
// that was not cancelled by the user is retried through opts.Web.
func NewLine(opts Options, fallback bool) (*Line, error) {
	l := &Line{fallback: fallback}
	if err := l.setup(domainauth.ProviderLine, opts); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Line) Login(ctx context.Context) (domainauth.SocialAuthResult, error) {
	if !l.useNative() || !l.fallback || l.web == nil {
		return l.login(ctx, lineScopes)
	}

	if err := l.Initialize(ctx); err != nil {
		return domainauth.SocialAuthResult{}, err
	}
	res, err := l.loginNative(ctx, lineScopes)
	if err != nil {
		if autherrors.IsUserCancelled(err) {
			return domainauth.SocialAuthResult{}, err
		}
		l.logger.Warn("native login failed, falling back to web flow", "error", err)
		if res, err = l.loginWeb(ctx); err != nil {
			return domainauth.SocialAuthResult{}, err
		}
	}
	return l.finish(ctx, res)
}

func (l *Line) Logout(ctx context.Context) error {
	return l.logoutNative(ctx)
}

// RefreshToken asks the SDK for a fresh access token.
func (l *Line) RefreshToken(ctx context.Context) (string, bool) {
	if l.sdk == nil {
		return "", false
	}
	tok, err := l.sdk.RefreshAccessToken(ctx)
	if err != nil || tok == "" {
		l.logger.Warn("line token refresh failed", "error", err)
		return "", false
	}
	l.tokens.update(tok, "", zeroTime)
	return tok, true
}
