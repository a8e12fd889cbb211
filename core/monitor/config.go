package monitor

import "time"

// Config holds the engine's cadence settings.
type Config struct {
	CycleIntervalSeconds     int `json:"cycle_interval_seconds"`
	EvaluationTimeoutSeconds int `json:"evaluation_timeout_seconds"`
	// HistoryWindow is how many archived readings feed the history risk
	// score.
	HistoryWindow int `json:"history_window"`
}

// CycleInterval returns the configured cadence, defaulting to 15 minutes.
func (c Config) CycleInterval() time.Duration {
	if c.CycleIntervalSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.CycleIntervalSeconds) * time.Second
}

// EvaluationTimeout bounds one unit's evaluation, defaulting to 30 seconds.
func (c Config) EvaluationTimeout() time.Duration {
	if c.EvaluationTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.EvaluationTimeoutSeconds) * time.Second
}

// Window returns the history depth, defaulting to 24 readings.
func (c Config) Window() int {
	if c.HistoryWindow <= 0 {
		return 24
	}
	return c.HistoryWindow
}
