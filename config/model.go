package config

import "fmt"

// ModelConfig points at the trained failure model artifact. The artifact is
// loaded once at startup; the monitor refuses to run without it.
type ModelConfig struct {
	ArtifactPath string `json:"artifact_path"`
}

// Validate checks the artifact path is set.
func (c ModelConfig) Validate() error {
	if c.ArtifactPath == "" {
		return fmt.Errorf("model artifact_path is required")
	}
	return nil
}
