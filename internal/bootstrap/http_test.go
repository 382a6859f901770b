package bootstrap

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/config"
)

func TestNewHTTPServerTimeouts(t *testing.T) {
	tests := []struct {
		name      string
		cfg       HTTPServerConfig
		wantAddr  string
		wantWrite time.Duration
	}{
		{
			name:      "write timeout derived from oauth timeout",
			cfg:       HTTPServerConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:9000"}, OAuthTimeout: 5 * time.Minute},
			wantAddr:  "127.0.0.1:9000",
			wantWrite: 5*time.Minute + writeMargin,
		},
		{
			name:      "explicit write timeout wins",
			cfg:       HTTPServerConfig{HTTP: config.HTTPConfig{Addr: ":9001", WriteTimeout: time.Minute}, OAuthTimeout: 5 * time.Minute},
			wantAddr:  ":9001",
			wantWrite: time.Minute,
		},
		{
			name:     "empty addr falls back to loopback",
			cfg:      HTTPServerConfig{},
			wantAddr: "127.0.0.1:8765",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewHTTPServer(tt.cfg, http.NotFoundHandler())
			if srv.Addr != tt.wantAddr {
				t.Fatalf("Addr = %q, want %q", srv.Addr, tt.wantAddr)
			}
			if srv.WriteTimeout != tt.wantWrite {
				t.Fatalf("WriteTimeout = %v, want %v", srv.WriteTimeout, tt.wantWrite)
			}
		})
	}
}

func TestServeListenerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewHTTPServer(HTTPServerConfig{}, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, srv, ln, time.Second, discardLogger()) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunHTTPServerBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	srv := NewHTTPServer(HTTPServerConfig{HTTP: config.HTTPConfig{Addr: ln.Addr().String()}}, http.NotFoundHandler())
	err = RunHTTPServer(context.Background(), srv, time.Second, discardLogger())
	require.ErrorContains(t, err, "listen")
}
