package providers

import (
	"context"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

var appleScopes = []string{"name", "email"}

// Apple signs in with Sign in with Apple. There is no durable provider session,
// so Logout only forgets cached tokens.
type Apple struct {
	core
}

var _ ports.AuthProvider = (*Apple)(nil)

func NewApple(opts Options) (*Apple, error) {
	a := &Apple{}
	if err := a.setup(domainauth.ProviderApple, opts); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Apple) Login(ctx context.Context) (domainauth.SocialAuthResult, error) {
	return a.login(ctx, appleScopes)
}

func (a *Apple) Logout(context.Context) error {
	a.tokens.clear()
	return nil
}
