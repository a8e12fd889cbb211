package simulator

import "fmt"

// Config holds parameters for the fleet simulator.
type Config struct {
	Broker          string  `json:"broker"`
	ClientID        string  `json:"client_id"`
	Count           int     `json:"count"`
	IntervalSeconds int     `json:"interval_seconds"`
	StatePrefix     string  `json:"state_topic_prefix"`
	RequestTopic    string  `json:"request_topic"`
	ResponsePrefix  string  `json:"response_topic_prefix"`
	// DegradedPct is the fraction of units generated with worn batteries
	// and poor cooling.
	DegradedPct float64 `json:"degraded_pct"`
	// Seed makes a run reproducible; zero seeds from the clock.
	Seed int64 `json:"seed"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.Count <= 0 {
		c.Count = 10
	}
	if c.IntervalSeconds <= 0 {
		c.IntervalSeconds = 10
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
	if c.ClientID == "" {
		c.ClientID = "upswatch-sim"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	if c.DegradedPct < 0 || c.DegradedPct > 1 {
		return fmt.Errorf("degraded_pct must be in [0,1], got %v", c.DegradedPct)
	}
	return nil
}
