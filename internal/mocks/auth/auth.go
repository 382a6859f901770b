package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sort"
	"sync"

	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	"github.com/yoii-livecomm/socialauth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider    = (*MockAuthProvider)(nil)
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.BrowserLauncher = (*RecordingBrowser)(nil)
	_ ports.IDTokenVerifier = (*StubVerifier)(nil)
	_ ports.WebFlow         = (*StubWebFlow)(nil)
)

// MockAuthProvider simulates a provider adapter with call counting.
type MockAuthProvider struct {
	Tag    domainauth.SocialProvider
	Method domainauth.AuthMethod

	InitializeFunc   func(ctx context.Context) error
	LoginFunc        func(ctx context.Context) (domainauth.SocialAuthResult, error)
	LogoutFunc       func(ctx context.Context) error
	CurrentTokenFunc func(ctx context.Context) (string, bool)
	RefreshTokenFunc func(ctx context.Context) (string, bool)

	mu          sync.Mutex
	initCalls   int
	loginCalls  int
	logoutCalls int
}

// NewMockAuthProvider creates a MockAuthProvider whose Login returns a web result with accessToken.
func NewMockAuthProvider(p domainauth.SocialProvider, accessToken string) *MockAuthProvider {
	return &MockAuthProvider{
		Tag:    p,
		Method: domainauth.MethodWeb,
		LoginFunc: func(context.Context) (domainauth.SocialAuthResult, error) {
			return domainauth.SocialAuthResult{
				Provider: p,
				Method:   domainauth.MethodWeb,
				Token:    domainauth.AuthToken{AccessToken: accessToken},
			}, nil
		},
	}
}

func (m *MockAuthProvider) Provider() domainauth.SocialProvider { return m.Tag }

func (m *MockAuthProvider) PreferredMethod() domainauth.AuthMethod {
	if m.Method == "" {
		return domainauth.MethodWeb
	}
	return m.Method
}

func (m *MockAuthProvider) Initialize(ctx context.Context) error {
	m.mu.Lock()
	m.initCalls++
	m.mu.Unlock()
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx)
	}
	return nil
}

func (m *MockAuthProvider) Login(ctx context.Context) (domainauth.SocialAuthResult, error) {
	m.mu.Lock()
	m.loginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return domainauth.SocialAuthResult{Provider: m.Tag, Method: m.PreferredMethod()}, nil
}

func (m *MockAuthProvider) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.logoutCalls++
	m.mu.Unlock()
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthProvider) IsLoggedIn(ctx context.Context) bool {
	_, ok := m.CurrentToken(ctx)
	return ok
}

func (m *MockAuthProvider) CurrentToken(ctx context.Context) (string, bool) {
	if m.CurrentTokenFunc != nil {
		return m.CurrentTokenFunc(ctx)
	}
	return "", false
}

func (m *MockAuthProvider) RefreshToken(ctx context.Context) (string, bool) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx)
	}
	return "", false
}

// InitCalls returns how many times Initialize ran.
func (m *MockAuthProvider) InitCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls
}

// LoginCalls returns how many times Login ran.
func (m *MockAuthProvider) LoginCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginCalls
}

// LogoutCalls returns how many times Logout ran.
func (m *MockAuthProvider) LogoutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logoutCalls
}

// MemorySessionStore is an in-memory session store for unit tests.
// The *Err fields inject failures into the matching operation.
type MemorySessionStore struct {
	GetErr         error
	SetErr         error
	RemoveErr      error
	MultiSetErr    error
	MultiRemoveErr error

	mu     sync.Mutex
	values map[string]string
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: make(map[string]string)}
}

func (m *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySessionStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MemorySessionStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	delete(m.values, key)
	return nil
}

func (m *MemorySessionStore) MultiSet(_ context.Context, pairs []ports.KeyValue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MultiSetErr != nil {
		return m.MultiSetErr
	}
	for _, kv := range pairs {
		m.values[kv.Key] = kv.Value
	}
	return nil
}

func (m *MemorySessionStore) MultiRemove(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MultiRemoveErr != nil {
		return m.MultiRemoveErr
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemorySessionStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordingBrowser captures opened URLs on a buffered channel instead of launching a browser.
type RecordingBrowser struct {
	URLs     chan string
	OpenFunc func(ctx context.Context, url string) error
}

// NewRecordingBrowser creates a RecordingBrowser with room for n URLs.
func NewRecordingBrowser(n int) *RecordingBrowser {
	return &RecordingBrowser{URLs: make(chan string, n)}
}

func (b *RecordingBrowser) Open(ctx context.Context, url string) error {
	if b.OpenFunc != nil {
		if err := b.OpenFunc(ctx, url); err != nil {
			return err
		}
	}
	select {
	case b.URLs <- url:
	default:
	}
	return nil
}

// StubVerifier returns fixed claims or a fixed error.
type StubVerifier struct {
	Claims domainauth.IDClaims
	Err    error
	Calls  int
}

func (s *StubVerifier) Verify(_ context.Context, _ string) (domainauth.IDClaims, error) {
	s.Calls++
	if s.Err != nil {
		return domainauth.IDClaims{}, s.Err
	}
	return s.Claims, nil
}

// StubWebFlow returns a fixed web-flow outcome and counts calls.
type StubWebFlow struct {
	Result domainauth.SocialAuthResult
	Err    error

	mu      sync.Mutex
	starts  int
	cancels int
}

func (s *StubWebFlow) StartOAuthFlow(_ context.Context) (domainauth.SocialAuthResult, error) {
	s.mu.Lock()
	s.starts++
	s.mu.Unlock()
	if s.Err != nil {
		return domainauth.SocialAuthResult{}, s.Err
	}
	return s.Result, nil
}

func (s *StubWebFlow) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

// Starts returns how many flows were started.
func (s *StubWebFlow) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Cancels returns how many times Cancel ran.
func (s *StubWebFlow) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}
