package sink

import "github.com/gridsentry/upswatch/core/factory"

// Config defines settings for result sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}
