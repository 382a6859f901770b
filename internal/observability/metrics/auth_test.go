package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/yoii-livecomm/socialauth/internal/domain/auth"
	autherrors "github.com/yoii-livecomm/socialauth/internal/errors"
)

type sample struct {
	kind  string
	name  string
	value float64
	tags  map[string]string
}

type recordingSink struct {
	mu      sync.Mutex
	samples []sample
}

func (r *recordingSink) Count(name string, v int64, tags map[string]string) {
	r.add(sample{"count", name, float64(v), tags})
}

func (r *recordingSink) Gauge(name string, v float64, tags map[string]string) {
	r.add(sample{"gauge", name, v, tags})
}

func (r *recordingSink) Timing(name string, v time.Duration, tags map[string]string) {
	r.add(sample{"timing", name, v.Seconds(), tags})
}

func (r *recordingSink) add(s sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func TestEmitLogin(t *testing.T) {
	sink := &recordingSink{}
	EmitLogin(sink, LoginMetric{Provider: "line", Method: "native", Duration: time.Second})
	EmitLogin(sink, LoginMetric{
		Provider: "google",
		Method:   "web",
		Err:      autherrors.New(autherrors.CodeUserCancelled, domainauth.ProviderGoogle, "closed"),
	})

	require.Len(t, sink.samples, 3)
	assert.Equal(t, LoginCount, sink.samples[0].name)
	assert.Equal(t, map[string]string{
		"provider": "line", "method": "native", "result": ResultSuccess, "code": "", "error_class": "",
	}, sink.samples[0].tags)
	assert.Equal(t, "timing", sink.samples[1].kind)
	assert.Equal(t, LoginDuration, sink.samples[1].name)

	cancelled := sink.samples[2].tags
	assert.Equal(t, ResultCancelled, cancelled["result"])
	assert.Equal(t, "USER_CANCELLED", cancelled["code"])
	assert.Equal(t, "user_cancelled", cancelled["error_class"])
}

func TestEmitRefreshAndCallback(t *testing.T) {
	sink := &recordingSink{}
	EmitRefresh(sink, RefreshMetric{Kind: "app", Result: ResultNoop})
	EmitRefresh(sink, RefreshMetric{Kind: "app", Err: errors.New("502")})
	EmitCallback(sink, CallbackMetric{Provider: "line", Handled: true})
	EmitCallback(sink, CallbackMetric{Provider: "line"})

	require.Len(t, sink.samples, 4)
	assert.Equal(t, ResultNoop, sink.samples[0].tags["result"])
	assert.Equal(t, ResultError, sink.samples[1].tags["result"])
	assert.Equal(t, CallbackCount, sink.samples[2].name)
	assert.Equal(t, ResultSuccess, sink.samples[2].tags["result"])
	assert.Equal(t, ResultNoop, sink.samples[3].tags["result"])
}

func TestEmit_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitLogin(nil, LoginMetric{})
		EmitRefresh(nil, RefreshMetric{})
		EmitCallback(nil, CallbackMetric{})
	})
}

func TestCloneTags(t *testing.T) {
	assert.Nil(t, CloneTags(nil))
	src := map[string]string{"a": "1"}
	cp := CloneTags(src)
	cp["a"] = "2"
	assert.Equal(t, "1", src["a"])
}
