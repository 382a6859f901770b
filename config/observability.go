package config

import "strings"

const defaultObservabilityName = "socialauth"

// ObservabilityConfig groups configuration that controls metrics emission.
type ObservabilityConfig struct {
	Metrics    ObservabilityMetricsConfig
	Prometheus PrometheusConfig
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.Prometheus.Sanitize()
}

// ObservabilityMetricsConfig controls emission of metrics to external sinks such as StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"         envDefault:"socialauth"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// PrometheusConfig controls the /metrics exposition.
type PrometheusConfig struct {
	Enabled   bool   `env:"OBSERVABILITY_PROMETHEUS_ENABLED"   envDefault:"true"`
	Namespace string `env:"OBSERVABILITY_PROMETHEUS_NAMESPACE" envDefault:"socialauth"`
}

// Sanitize defaults the namespace.
func (c *PrometheusConfig) Sanitize() {
	if c.Namespace = strings.TrimSpace(c.Namespace); c.Namespace == "" {
		c.Namespace = defaultObservabilityName
	}
}
