package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" auth/login ": "auth_login",
		"auth..login":  "auth.login",
		"multi  space": "multi__space",
		".auth.login.": "auth.login",
	}
	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " socialauth "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	got := formatTags(global, local)
	want := "|#env:stage,result:success,service:socialauth"
	if got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientLine(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Prefix: ".socialauth.", GlobalTags: map[string]string{"env": "dev"}})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Enabled() {
		t.Fatal("client without address must be disabled")
	}
	if got, want := c.Line("auth.login", "1|c", map[string]string{"provider": "line"}), "socialauth.auth.login:1|c|#env:dev,provider:line"; got != want {
		t.Fatalf("Line = %q, want %q", got, want)
	}
	if got := c.Line("  ", "1|c", nil); got != "" {
		t.Fatalf("blank metric should render empty, got %q", got)
	}
	// Disabled clients drop silently.
	c.Count("auth.login", 1, nil)
}

func TestClientWritesUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp listen unavailable: %v", err)
	}
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "sa"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer c.Close()

	c.Timing("auth.login.duration", 1500*time.Microsecond, map[string]string{"provider": "google"})

	buf := make([]byte, 512)
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read datagram: %v", err)
	}
	got := string(buf[:n])
	if !strings.HasPrefix(got, "sa.auth.login.duration:1.5|ms") || !strings.HasSuffix(got, "|#provider:google") {
		t.Fatalf("unexpected datagram %q", got)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.Enabled() {
		t.Fatal("closed client must report disabled")
	}
}

type countingSink struct{ counts, gauges, timings int }

func (s *countingSink) Count(string, int64, map[string]string) { s.counts++ }
func (s *countingSink) Gauge(string, float64, map[string]string) { s.gauges++ }
func (s *countingSink) Timing(string, time.Duration, map[string]string) { s.timings++ }

func TestMulti(t *testing.T) {
	t.Parallel()

	if _, ok := Multi(nil, nil).(Nop); !ok {
		t.Fatal("Multi of nils should be Nop")
	}
	a := &countingSink{}
	if Multi(a, nil) != Sink(a) {
		t.Fatal("Multi of one sink should return it")
	}
	b := &countingSink{}
	m := Multi(a, b)
	m.Count("x", 1, nil)
	m.Gauge("x", 1, nil)
	m.Timing("x", time.Second, nil)
	if a.counts != 1 || b.counts != 1 || b.gauges != 1 || a.timings != 1 {
		t.Fatalf("fan-out mismatch: a=%+v b=%+v", a, b)
	}
}
