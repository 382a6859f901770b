package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"social auth code", autherrors.New(autherrors.CodeTimeout, domainauth.ProviderLine, "t"), "timeout"},
		{"wrapped social auth", fmt.Errorf("login: %w", autherrors.New(autherrors.CodeUserCancelled, domainauth.ProviderApple, "c")), "user_cancelled"},
		{"provider passthrough", autherrors.New("access_denied", domainauth.ProviderGoogle, "no"), "access_denied"},
		{"store code", &autherrors.StoreError{Code: autherrors.StoreTimeout, Message: "slow"}, "store_timeout"},
		{"innermost type", fmt.Errorf("outer: %w", context.DeadlineExceeded), "context_deadlineexceedederror"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
