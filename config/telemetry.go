package config

import "time"

// TelemetryConfig holds configuration for the telemetry collector.
type TelemetryConfig struct {
	Enabled bool `json:"enabled"`
	// Mode selects how readings arrive: "push" (units publish state on
	// their own), "pull" (the collector polls) or "hybrid".
	Mode            string `json:"mode"`
	IntervalSeconds int    `json:"interval_seconds"`
	RequestTopic    string `json:"request_topic"`
	ResponsePrefix  string `json:"response_topic_prefix"`
	StatePrefix     string `json:"state_topic_prefix"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	// MaxAgeSeconds drops cached readings older than this from Latest;
	// zero keeps everything.
	MaxAgeSeconds int `json:"max_age_seconds"`
}

// SetDefaults applies the standard topic layout.
func (c *TelemetryConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "push"
	}
	if c.StatePrefix == "" {
		c.StatePrefix = "ups/state"
	}
	if c.RequestTopic == "" {
		c.RequestTopic = "ups/telemetry/request"
	}
	if c.ResponsePrefix == "" {
		c.ResponsePrefix = "ups/telemetry/response"
	}
}

func (c TelemetryConfig) Interval() int {
	if c.IntervalSeconds <= 0 {
		return 10
	}
	return c.IntervalSeconds
}

func (c TelemetryConfig) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 3
	}
	return c.TimeoutSeconds
}

// MaxAge returns the staleness cutoff for cached readings.
func (c TelemetryConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeSeconds) * time.Second
}
