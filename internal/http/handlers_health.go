package httpx

import (
	"net/http"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
)

type healthResponse struct {
	Status    string                      `json:"status"`
	Providers []domainauth.SocialProvider `json:"providers"`
}

// healthHandler returns 200 OK with the registered providers for readiness/liveness checks.
func healthHandler(providers func() []domainauth.SocialProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			return
		}
		resp := healthResponse{Status: "ok", Providers: []domainauth.SocialProvider{}}
		if providers != nil {
			if ps := providers(); ps != nil {
				resp.Providers = ps
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
