package config

import (
	"testing"
	"time"
)

func TestTelemetryConfigDefaults(t *testing.T) {
	cfg := TelemetryConfig{}
	cfg.SetDefaults()
	if cfg.Interval() != 10 {
		t.Fatalf("expected default interval 10, got %d", cfg.Interval())
	}
	if cfg.Timeout() != 3 {
		t.Fatalf("expected default timeout 3, got %d", cfg.Timeout())
	}
	if cfg.Mode != "push" {
		t.Fatalf("expected default mode push, got %s", cfg.Mode)
	}
	if cfg.StatePrefix != "ups/state" {
		t.Fatalf("unexpected state prefix %s", cfg.StatePrefix)
	}
	if cfg.MaxAge() != 0 {
		t.Fatalf("expected no staleness cutoff by default, got %s", cfg.MaxAge())
	}
}

func TestTelemetryConfigValues(t *testing.T) {
	cfg := TelemetryConfig{IntervalSeconds: 5, TimeoutSeconds: 2, MaxAgeSeconds: 60}
	if cfg.Interval() != 5 {
		t.Fatalf("expected interval 5, got %d", cfg.Interval())
	}
	if cfg.Timeout() != 2 {
		t.Fatalf("expected timeout 2, got %d", cfg.Timeout())
	}
	if cfg.MaxAge() != time.Minute {
		t.Fatalf("expected max age 1m, got %s", cfg.MaxAge())
	}
}
