package httpx

import (
	"errors"
	"html/template"
	"net/http"

	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	"github.com/yoii-livecomm/socialauth/internal/service"
)

// callbackPage is served for browser redirects. With Resubmit set, it moves an
// implicit-grant fragment into the query string so the server can read it.
var callbackPage = template.Must(template.New("callback").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{- if .Resubmit}}
<script>
(function () {
  var h = window.location.hash;
  if (h.length > 1) {
    window.location.replace(window.location.pathname + "?" + h.substring(1));
  } else {
    document.body.textContent = "Missing OAuth response.";
  }
})();
</script>
{{- else}}
<p>{{.Message}}</p>
{{- end}}
</body>
</html>
`))

type callbackView struct {
	Title    string
	Message  string
	Resubmit bool
}

// DeepLinkRequest is the body of POST /deeplink.
type DeepLinkRequest struct {
	URL string `json:"url"`
}

// Callback receives a browser redirect and hands it to the pending flow.
// GET /oauth/{provider}/callback.
func (h *AuthHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := providerParam(w, r)
	if !ok {
		return
	}
	if r.URL.RawQuery == "" {
		renderCallback(w, http.StatusOK, callbackView{Title: "Signing in", Resubmit: true})
		return
	}

	err := h.DeepLinks.Route(h.DeepLinks.CallbackURL(provider, r.URL.RawQuery))
	switch {
	case err == nil:
		renderCallback(w, http.StatusOK, callbackView{Title: "Signed in", Message: "You can close this window and return to the app."})
	case errors.Is(err, service.ErrNoPendingFlow):
		renderCallback(w, http.StatusConflict, callbackView{Title: "Sign-in expired", Message: "This sign-in is no longer pending. Start again from the app."})
	default:
		h.logger().Warn("oauth callback rejected", "provider", provider, "error", err)
		renderCallback(w, StatusFor(err), callbackView{Title: "Sign-in failed", Message: autherrors.UserMessage(err)})
	}
}

// DeepLink accepts re-entry URLs forwarded by the OS deep-link handler.
// POST /deeplink.
func (h *AuthHandlers) DeepLink(w http.ResponseWriter, r *http.Request) {
	var req DeepLinkRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	err := h.DeepLinks.Route(req.URL)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, service.ErrNotOAuthCallback):
		WriteError(w, ErrorParams{Status: http.StatusBadRequest, Code: codeNotOAuthCallback, Err: err})
	case errors.Is(err, service.ErrNoPendingFlow):
		WriteError(w, ErrorParams{Status: http.StatusConflict, Code: codeNoPendingFlow, Err: err})
	default:
		WriteAuthError(w, err)
	}
}

// Cancel aborts the provider's pending browser flow.
// POST /oauth/{provider}/cancel.
func (h *AuthHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	provider, ok := providerParam(w, r)
	if !ok {
		return
	}
	if err := h.DeepLinks.Cancel(provider); err != nil {
		WriteAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func renderCallback(w http.ResponseWriter, status int, v callbackView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, v)
}
