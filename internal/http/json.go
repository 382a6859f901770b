package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
)

const maxRequestBody = 64 << 10

// Error codes for failures that are not authentication errors.
const (
	codeInvalidJSON        = "INVALID_JSON"
	codeNotOAuthCallback   = "NOT_OAUTH_CALLBACK"
	codeNoPendingFlow      = "NO_PENDING_FLOW"
	codeRefreshUnavailable = "REFRESH_UNAVAILABLE"
	codeInternal           = "INTERNAL"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code        string                    `json:"code"`
	Message     string                    `json:"message"`
	Provider    domainauth.SocialProvider `json:"provider,omitempty"`
	UserMessage string                    `json:"userMessage"`
}

// DecodeJSON decodes JSON from the request body into the destination and handles errors.
// Returns true if successful, false if there was an error (error response already written).
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		WriteError(w, ErrorParams{Status: http.StatusBadRequest, Code: codeInvalidJSON, Err: err})
		return false
	}

	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// ErrorParams describes a non-authentication error response.
type ErrorParams struct {
	Status int
	Code   string
	Err    error
}

// WriteError writes a JSON error response using ErrorParams.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	msg := http.StatusText(p.Status)
	if p.Err != nil {
		msg = p.Err.Error()
	}
	WriteJSON(w, p.Status, ErrorBody{Code: p.Code, Message: msg, UserMessage: msg})
}

// WriteAuthError renders err with the status its error code maps to.
// Errors that are not SocialAuthErrors become a 500 without leaking their text.
func WriteAuthError(w http.ResponseWriter, err error) {
	sae, ok := autherrors.As(err)
	if !ok {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Code:        codeInternal,
			Message:     http.StatusText(http.StatusInternalServerError),
			UserMessage: autherrors.UserMessage(err),
		})
		return
	}
	WriteJSON(w, StatusFor(err), ErrorBody{
		Code:        string(sae.Code),
		Message:     sae.Message,
		Provider:    sae.Provider,
		UserMessage: autherrors.UserMessage(err),
	})
}

// StatusFor maps an error onto an HTTP status.
func StatusFor(err error) int {
	var sae *autherrors.SocialAuthError
	if !errors.As(err, &sae) {
		return http.StatusInternalServerError
	}
	switch sae.Code {
	case autherrors.CodeProviderNotFound:
		return http.StatusNotFound
	case autherrors.CodeBackendExchangeFailed:
		return http.StatusBadGateway
	case autherrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case autherrors.CodeSuperseded:
		return http.StatusConflict
	default:
		return http.StatusUnauthorized
	}
}
