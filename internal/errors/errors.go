package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
)

// ErrorCode represents a category of authentication failure.
// Provider OAuth error values (e.g. "access_denied") pass through as ErrorCode verbatim.
type ErrorCode string

const (
	// CodeUserCancelled indicates the user aborted the flow. Never surfaced as an alarming error.
	CodeUserCancelled ErrorCode = "USER_CANCELLED"
	// CodeProviderNotFound indicates the requested provider has no registered adapter.
	CodeProviderNotFound ErrorCode = "PROVIDER_NOT_FOUND"
	// CodeLoginFailed indicates a generic provider-side failure.
	CodeLoginFailed ErrorCode = "LOGIN_FAILED"
	// CodeInitFailed indicates the provider could not be initialized.
	CodeInitFailed ErrorCode = "INIT_FAILED"
	// CodeBrowserFailed indicates the system browser could not be launched.
	CodeBrowserFailed ErrorCode = "BROWSER_FAILED"
	// CodeTimeout indicates no OAuth callback arrived in time.
	CodeTimeout ErrorCode = "TIMEOUT"
	// CodeNoToken indicates the OAuth callback carried no access token.
	CodeNoToken ErrorCode = "NO_TOKEN"
	// CodeParseError indicates the OAuth callback URL was malformed.
	CodeParseError ErrorCode = "PARSE_ERROR"
	// CodeSuperseded indicates a newer flow replaced this pending flow.
	CodeSuperseded ErrorCode = "SUPERSEDED"
	// CodeStateMismatch indicates the callback state did not match the pending request.
	CodeStateMismatch ErrorCode = "STATE_MISMATCH"
	// CodeIDTokenInvalid indicates the provider ID token failed verification.
	CodeIDTokenInvalid ErrorCode = "ID_TOKEN_INVALID"
	// CodeBackendExchangeFailed indicates the backend rejected or could not be reached during token exchange.
	CodeBackendExchangeFailed ErrorCode = "BACKEND_EXCHANGE_FAILED"
)

// SocialAuthError is the error shape surfaced by every authentication operation.
// Provider is always set, even when the failure originated in the backend call.
type SocialAuthError struct {
	Code     ErrorCode
	Message  string
	Provider domainauth.SocialProvider
	// Cause is the originating error (optional).
	Cause error
}

// Error implements the error interface.
func (e *SocialAuthError) Error() string {
	prefix := string(e.Code)
	if e.Provider != "" {
		prefix = string(e.Provider) + ": " + prefix
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return prefix + ": " + e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *SocialAuthError) Unwrap() error {
	return e.Cause
}

// New creates a SocialAuthError without a cause.
func New(code ErrorCode, provider domainauth.SocialProvider, message string) *SocialAuthError {
	return &SocialAuthError{Code: code, Message: message, Provider: provider}
}

// Newf creates a SocialAuthError with a formatted message.
func Newf(code ErrorCode, provider domainauth.SocialProvider, format string, args ...any) *SocialAuthError {
	return New(code, provider, fmt.Sprintf(format, args...))
}

// Wrap wraps cause in a SocialAuthError, preserving it for errors.Is/As.
func Wrap(cause error, code ErrorCode, provider domainauth.SocialProvider, message string) *SocialAuthError {
	return &SocialAuthError{Code: code, Message: message, Provider: provider, Cause: cause}
}

// As extracts the outermost SocialAuthError from err.
func As(err error) (*SocialAuthError, bool) {
	var sae *SocialAuthError
	if errors.As(err, &sae) {
		return sae, true
	}
	return nil, false
}

// CodeOf returns the code of a SocialAuthError, or empty string otherwise.
func CodeOf(err error) ErrorCode {
	if sae, ok := As(err); ok {
		return sae.Code
	}
	return ""
}

// Is reports whether err is a SocialAuthError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsUserCancelled reports whether err represents a user cancellation.
func IsUserCancelled(err error) bool {
	return Is(err, CodeUserCancelled)
}

// IsCancellation reports whether err looks like a cancellation signal from an SDK or context.
// SDKs signal cancellation inconsistently, so codes and messages are both inspected.
func IsCancellation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || IsUserCancelled(err) {
		return true
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) && strings.EqualFold(coded.Code(), "CANCEL") {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "cancel")
}

// Message texts rendered to end users.
const (
	msgBackendProblem  = "We couldn't reach our servers. Please check your connection and try again."
	msgProviderProblem = "Sign-in with the selected provider failed. Please try again."
)

// UserMessage renders err for end users.
// Cancellation yields an empty string (no dialog); backend failures are distinguished
// from provider failures; otherwise the error message is used when available.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	sae, ok := As(err)
	if !ok {
		return msgProviderProblem
	}
	switch sae.Code {
	case CodeUserCancelled:
		return ""
	case CodeBackendExchangeFailed:
		return msgBackendProblem
	default:
		if sae.Message != "" {
			return sae.Message
		}
		return msgProviderProblem
	}
}
