package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
)

// AuthService is the orchestrator surface the API exposes.
type AuthService interface {
	Providers() []domainauth.SocialProvider
	LoginWithProvider(ctx context.Context, provider domainauth.SocialProvider) (domainauth.BackendAuthResponse, error)
	Logout(ctx context.Context, provider domainauth.SocialProvider) error
	CurrentUser(ctx context.Context) *domainauth.UserProfile
	IsLoggedIn(ctx context.Context) bool
	ActiveProvider(ctx context.Context) (domainauth.SocialProvider, bool)
	RefreshAppToken(ctx context.Context) (string, bool)
}

// DeepLinkRouter delivers OAuth re-entry URLs to pending web flows.
type DeepLinkRouter interface {
	Route(rawURL string) error
	Cancel(provider domainauth.SocialProvider) error
	CallbackURL(provider domainauth.SocialProvider, rawQuery string) string
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc       AuthService
	DeepLinks DeepLinkRouter
	Logger    *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// SessionResponse describes the stored session.
type SessionResponse struct {
	LoggedIn bool                      `json:"loggedIn"`
	User     *domainauth.UserProfile   `json:"user"`
	Provider domainauth.SocialProvider `json:"provider,omitempty"`
}

// RefreshResponse carries a refreshed app token.
type RefreshResponse struct {
	AppToken string `json:"appToken"`
}

// Login runs a full provider login.
// POST /auth/{provider}/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := providerParam(w, r)
	if !ok {
		return
	}

	resp, err := h.Svc.LoginWithProvider(r.Context(), provider)
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, resp)
	case autherrors.IsUserCancelled(err):
		w.WriteHeader(http.StatusNoContent)
	default:
		h.logger().Warn("login failed", "provider", provider, "code", autherrors.CodeOf(err))
		WriteAuthError(w, err)
	}
}

// Logout clears the session.
// POST /auth/logout?provider=<optional>.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	var provider domainauth.SocialProvider
	if raw := r.URL.Query().Get("provider"); raw != "" {
		p, err := domainauth.ParseProvider(raw)
		if err != nil {
			WriteAuthError(w, autherrors.Wrap(err, autherrors.CodeProviderNotFound, domainauth.SocialProvider(raw), "Unknown provider"))
			return
		}
		provider = p
	}

	if err := h.Svc.Logout(r.Context(), provider); err != nil {
		h.logger().Error("logout failed", "error", err)
		WriteError(w, ErrorParams{Status: http.StatusInternalServerError, Code: codeInternal, Err: errors.New("failed to clear session")})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session reports the stored session.
// GET /auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := SessionResponse{LoggedIn: h.Svc.IsLoggedIn(ctx)}
	if resp.LoggedIn {
		resp.User = h.Svc.CurrentUser(ctx)
		resp.Provider, _ = h.Svc.ActiveProvider(ctx)
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Refresh trades the stored refresh token for a new app token.
// POST /auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Svc.RefreshAppToken(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Status: http.StatusUnauthorized,
			Code:   codeRefreshUnavailable,
			Err:    errors.New("app token could not be refreshed"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, RefreshResponse{AppToken: token})
}

// Providers lists the registered providers.
// GET /auth/providers.
func (h *AuthHandlers) Providers(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"providers": h.Svc.Providers()})
}

func providerParam(w http.ResponseWriter, r *http.Request) (domainauth.SocialProvider, bool) {
	raw := chi.URLParam(r, "provider")
	p, err := domainauth.ParseProvider(raw)
	if err != nil {
		WriteAuthError(w, autherrors.Wrap(err, autherrors.CodeProviderNotFound, domainauth.SocialProvider(raw), "Unknown provider"))
		return "", false
	}
	return p, true
}
