package config

// SentryConfig defines settings for Sentry error reporting. An empty DSN
// disables reporting; cycle aborts and publish failures are then only logged.
type SentryConfig struct {
	DSN              string  `json:"dsn"`
	Environment      string  `json:"environment"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}
