package config

// APIConfig defines settings for the read-only HTTP API and the Prometheus
// metrics endpoint it shares a listener with.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// LogToken, when set, is required as a Bearer token on the audit log
	// endpoint.
	LogToken string `json:"log_token"`
}

// SetDefaults applies the default listen address.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
