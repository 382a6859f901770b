// Package mocks provides generated mock implementations of the social auth ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	exchanger := mocks.NewMockTokenExchanger(ctrl)
//	exchanger.EXPECT().Exchange(gomock.Any(), gomock.Any()).Return(resp, nil)
package mocks

// Generate mock for TokenExchanger interface from internal/ports package.
// This creates MockTokenExchanger with methods for all TokenExchanger interface methods:
// Exchange, Refresh
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_exchanger_mock.go github.com/yoii-livecomm/socialauth/internal/ports TokenExchanger

// Generate mock for BrowserLauncher interface from internal/ports package.
// This creates MockBrowserLauncher with methods for all BrowserLauncher interface methods:
// Open
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=browser_launcher_mock.go github.com/yoii-livecomm/socialauth/internal/ports BrowserLauncher

// Generate mock for NativeSDK interface from internal/ports package.
// This creates MockNativeSDK with methods for all NativeSDK interface methods:
// Setup, Login, Logout, CurrentAccessToken, RefreshAccessToken
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=native_sdk_mock.go github.com/yoii-livecomm/socialauth/internal/ports NativeSDK
