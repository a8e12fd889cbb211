package config

// NotifyConfig controls pushing monitor output back to MQTT topics.
type NotifyConfig struct {
	// Enabled turns on the bus-to-MQTT forwarder. It requires a reachable
	// broker in the mqtt section.
	Enabled bool `json:"enabled"`
}
