package statsd

import "time"

// Nop discards every metric.
type Nop struct{}

func (Nop) Count(string, int64, map[string]string) {}
func (Nop) Gauge(string, float64, map[string]string) {}
func (Nop) Timing(string, time.Duration, map[string]string) {}

// Multi fans each metric out to several sinks. Nil entries are skipped.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

type multi []Sink

func (m multi) Count(name string, value int64, tags map[string]string) {
	for _, s := range m {
		s.Count(name, value, tags)
	}
}

func (m multi) Gauge(name string, value float64, tags map[string]string) {
	for _, s := range m {
		s.Gauge(name, value, tags)
	}
}

func (m multi) Timing(name string, value time.Duration, tags map[string]string) {
	for _, s := range m {
		s.Timing(name, value, tags)
	}
}
