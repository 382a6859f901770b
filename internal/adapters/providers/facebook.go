package providers

import (
	"context"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

var facebookScopes = []string{"public_profile", "email"}

// Facebook signs in through the Facebook SDK when present, otherwise the browser.
// The SDK manages token lifetime, so RefreshToken stays unsupported.
type Facebook struct {
	core
}

var _ ports.AuthProvider = (*Facebook)(nil)

func NewFacebook(opts Options) (*Facebook, error) {
	f := &Facebook{}
	if err := f.setup(domainauth.ProviderFacebook, opts); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Facebook) Login(ctx context.Context) (domainauth.SocialAuthResult, error) {
	return f.login(ctx, facebookScopes)
}

func (f *Facebook) Logout(ctx context.Context) error {
	return f.logoutNative(ctx)
}
