package bootstrap

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/config"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	mockauth "github.com/yoii-livecomm/socialauth/internal/mocks/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tagsOf(ps []ports.AuthProvider) []domainauth.SocialProvider {
	out := make([]domainauth.SocialProvider, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Provider())
	}
	return out
}

func TestBuildProvidersDevModeUsesLocalSDK(t *testing.T) {
	cfg := &config.AppConfig{
		IsDev:     true,
		AppScheme: config.DefaultAppScheme,
		Providers: config.ProvidersConfig{
			Line:     config.ProviderConfig{Enabled: true},
			Facebook: config.ProviderConfig{Enabled: true},
			Google:   config.ProviderConfig{Enabled: true},
		},
	}

	set, err := BuildProviders(ProviderDeps{Config: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	assert.Equal(t, []domainauth.SocialProvider{
		domainauth.ProviderLine, domainauth.ProviderFacebook, domainauth.ProviderGoogle,
	}, tagsOf(set.Providers))
	assert.Empty(t, set.Receivers)
	for _, p := range set.Providers {
		assert.Equal(t, domainauth.MethodNative, p.PreferredMethod(), p.Provider())
	}
}

func TestBuildProvidersWebFlows(t *testing.T) {
	cfg := &config.AppConfig{
		AppScheme: config.DefaultAppScheme,
		Providers: config.ProvidersConfig{
			Line:     config.ProviderConfig{Enabled: true, ClientID: "line-channel"},
			Facebook: config.ProviderConfig{Enabled: true},
			Google:   config.ProviderConfig{Enabled: true, ClientID: "google-client", PreferWeb: true},
			Apple:    config.ProviderConfig{Enabled: false, ClientID: "apple-service"},
		},
	}

	set, err := BuildProviders(ProviderDeps{
		Config:  cfg,
		Browser: mockauth.NewRecordingBrowser(1),
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	assert.Equal(t, []domainauth.SocialProvider{domainauth.ProviderLine, domainauth.ProviderGoogle}, tagsOf(set.Providers))
	require.Len(t, set.Receivers, 2)
	assert.Equal(t, domainauth.ProviderLine, set.Receivers[0].Provider())
	assert.Equal(t, domainauth.ProviderGoogle, set.Receivers[1].Provider())
	for _, p := range set.Providers {
		assert.Equal(t, domainauth.MethodWeb, p.PreferredMethod(), p.Provider())
	}
}

func TestBuildProvidersErrors(t *testing.T) {
	tests := []struct {
		name    string
		deps    ProviderDeps
		wantErr string
	}{
		{
			name:    "missing config",
			deps:    ProviderDeps{},
			wantErr: "config is required",
		},
		{
			name: "web login without browser",
			deps: ProviderDeps{Config: &config.AppConfig{
				Providers: config.ProvidersConfig{Line: config.ProviderConfig{Enabled: true, ClientID: "line-channel"}},
			}},
			wantErr: "browser launcher is required",
		},
		{
			name: "facebook has no id token issuer",
			deps: ProviderDeps{
				Config: &config.AppConfig{
					Providers: config.ProvidersConfig{
						Facebook: config.ProviderConfig{Enabled: true, ClientID: "fb-app", VerifyIDToken: true},
					},
				},
				Browser: mockauth.NewRecordingBrowser(1),
			},
			wantErr: "configure facebook: id token verifier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.deps.Logger = discardLogger()
			_, err := BuildProviders(tt.deps)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuildProvidersVerifierForIssuingProviders(t *testing.T) {
	cfg := &config.AppConfig{
		Providers: config.ProvidersConfig{
			Google: config.ProviderConfig{Enabled: true, ClientID: "google-client", VerifyIDToken: true},
			Apple:  config.ProviderConfig{Enabled: true, ClientID: "apple-service", VerifyIDToken: true},
		},
	}

	// Discovery is lazy, so construction succeeds without network access.
	set, err := BuildProviders(ProviderDeps{Config: cfg, Browser: mockauth.NewRecordingBrowser(1), Logger: discardLogger()})
	require.NoError(t, err)
	assert.Equal(t, []domainauth.SocialProvider{domainauth.ProviderGoogle, domainauth.ProviderApple}, tagsOf(set.Providers))
}
