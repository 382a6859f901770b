package oidc

// Package oidc verifies OpenID Connect ID tokens issued by social identity providers.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
	"golang.org/x/oauth2"
)

// Issuers of the providers that sign ID tokens.
var defaultIssuers = map[domainauth.SocialProvider]string{
	domainauth.ProviderLine:   "https://access.line.me",
	domainauth.ProviderGoogle: "https://accounts.google.com",
	domainauth.ProviderApple:  "https://appleid.apple.com",
}

// DefaultIssuer returns the OIDC issuer for p, if p issues ID tokens.
func DefaultIssuer(p domainauth.SocialProvider) (string, bool) {
	iss, ok := defaultIssuers[p]
	return iss, ok
}

// VerifierConfig holds configuration for an ID token verifier.
type VerifierConfig struct {
	Provider domainauth.SocialProvider
	// ClientID is the expected audience.
	ClientID string
	// Issuer overrides the provider's default issuer.
	Issuer     string
	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// DiscoveryDocument represents the OIDC discovery document.
type DiscoveryDocument struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	JwksURI                          string   `json:"jwks_uri"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported,omitempty"`
}

// Verifier implements ports.IDTokenVerifier with go-oidc.
// Discovery runs on first use; a failed discovery is retried on the next call.
type Verifier struct {
	issuer     string
	clientID   string
	httpClient *http.Client

	mu       sync.Mutex
	verifier *gooidc.IDTokenVerifier
}

var _ ports.IDTokenVerifier = (*Verifier)(nil)

// NewVerifier creates a verifier without contacting the issuer.
func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	issuer := cfg.Issuer
	if issuer == "" {
		var ok bool
		if issuer, ok = DefaultIssuer(cfg.Provider); !ok {
			return nil, fmt.Errorf("provider %q does not issue ID tokens", cfg.Provider)
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Verifier{
		issuer:     strings.TrimSuffix(issuer, "/"),
		clientID:   cfg.ClientID,
		httpClient: httpClient,
	}, nil
}

// Verify checks signature, issuer, audience and expiry, then maps the claims.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (domainauth.IDClaims, error) {
	if rawIDToken == "" {
		return domainauth.IDClaims{}, errors.New("id token is empty")
	}
	iv, err := v.load(ctx)
	if err != nil {
		return domainauth.IDClaims{}, err
	}
	idTok, err := iv.Verify(v.clientContext(ctx), rawIDToken)
	if err != nil {
		return domainauth.IDClaims{}, fmt.Errorf("verify id_token: %w", err)
	}
	var c idTokenClaims
	if claimsErr := idTok.Claims(&c); claimsErr != nil {
		return domainauth.IDClaims{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	return mapClaims(idTok.Issuer, idTok.Subject, c), nil
}

func (v *Verifier) load(ctx context.Context) (*gooidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.verifier != nil {
		return v.verifier, nil
	}
	op, err := gooidc.NewProvider(v.clientContext(ctx), v.issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	v.verifier = op.Verifier(&gooidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}

func (v *Verifier) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, v.httpClient)
}

// idTokenClaims is the superset of profile claims the supported providers emit.
type idTokenClaims struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
	Nonce      string `json:"nonce"`
}

func mapClaims(issuer, subject string, c idTokenClaims) domainauth.IDClaims {
	name := c.Name
	if name == "" {
		name = strings.TrimSpace(c.GivenName + " " + c.FamilyName)
	}
	return domainauth.IDClaims{
		Issuer:  issuer,
		Subject: subject,
		Email:   c.Email,
		Name:    name,
		Picture: c.Picture,
		Nonce:   c.Nonce,
	}
}
