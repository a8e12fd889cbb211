package config

// ReportConfig defines settings for the periodic fleet health report.
type ReportConfig struct {
	Enabled bool `json:"enabled"`
	// Path is where the latest report is written as JSON. Empty keeps the
	// report in memory only.
	Path string `json:"path"`
	// TopRisks caps the at-risk ranking in the report.
	TopRisks int `json:"top_risks"`
}

// SetDefaults applies the standard ranking depth.
func (c *ReportConfig) SetDefaults() {
	if c.TopRisks <= 0 {
		c.TopRisks = 5
	}
}
