// Package metrics standardises the names and tags of authentication metrics.
package metrics

import (
	"time"

	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
	obserrors "github.com/yoii-livecomm/socialauth/internal/observability/errors"
	"github.com/yoii-livecomm/socialauth/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess   = "success"
	ResultError     = "error"
	ResultCancelled = "cancelled"
	ResultNoop      = "noop"
)

// Metric names.
const (
	LoginCount      = "auth.login"
	LoginDuration   = "auth.login.duration"
	RefreshCount    = "auth.refresh"
	RefreshDuration = "auth.refresh.duration"
	CallbackCount   = "oauth.callback"
)

// LoginMetric describes one LoginWithProvider attempt.
type LoginMetric struct {
	Provider string
	Method   string
	Duration time.Duration
	Err      error
}

// EmitLogin records a login attempt. Every tag key is always present so label sets stay stable.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"provider":    in.Provider,
		"method":      in.Method,
		"result":      ResultFor(in.Err),
		"code":        string(autherrors.CodeOf(in.Err)),
		"error_class": obserrors.Classify(in.Err),
	}
	sink.Count(LoginCount, 1, tags)
	if in.Duration > 0 {
		sink.Timing(LoginDuration, in.Duration, CloneTags(tags))
	}
}

// RefreshMetric describes one token refresh. Kind is "app" or "provider".
type RefreshMetric struct {
	Kind     string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitRefresh records a refresh attempt. Result defaults from Err when empty.
func EmitRefresh(sink statsd.Sink, in RefreshMetric) {
	if sink == nil {
		return
	}
	result := in.Result
	if result == "" {
		result = ResultFor(in.Err)
	}
	tags := map[string]string{
		"kind":        in.Kind,
		"result":      result,
		"error_class": obserrors.Classify(in.Err),
	}
	sink.Count(RefreshCount, 1, tags)
	if in.Duration > 0 {
		sink.Timing(RefreshDuration, in.Duration, CloneTags(tags))
	}
}

// CallbackMetric describes an inbound OAuth callback or deep link.
type CallbackMetric struct {
	Provider string
	Handled  bool
	Err      error
}

// EmitCallback records whether an inbound callback resolved a pending flow.
func EmitCallback(sink statsd.Sink, in CallbackMetric) {
	if sink == nil {
		return
	}
	result := ResultSuccess
	switch {
	case in.Err != nil:
		result = ResultError
	case !in.Handled:
		result = ResultNoop
	}
	sink.Count(CallbackCount, 1, map[string]string{
		"provider":    in.Provider,
		"result":      result,
		"error_class": obserrors.Classify(in.Err),
	})
}

// ResultFor maps an operation error onto a result tag; cancellations are not errors.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case autherrors.IsUserCancelled(err):
		return ResultCancelled
	default:
		return ResultError
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
