package monitor

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	if cfg.CycleInterval() != 15*time.Minute {
		t.Errorf("cycle interval = %v, want 15m", cfg.CycleInterval())
	}
	if cfg.EvaluationTimeout() != 30*time.Second {
		t.Errorf("evaluation timeout = %v, want 30s", cfg.EvaluationTimeout())
	}
	if cfg.Window() != 24 {
		t.Errorf("history window = %d, want 24", cfg.Window())
	}
}

func TestConfigExplicitValues(t *testing.T) {
	cfg := Config{CycleIntervalSeconds: 60, EvaluationTimeoutSeconds: 5, HistoryWindow: 8}
	if cfg.CycleInterval() != time.Minute {
		t.Errorf("cycle interval = %v, want 1m", cfg.CycleInterval())
	}
	if cfg.EvaluationTimeout() != 5*time.Second {
		t.Errorf("evaluation timeout = %v, want 5s", cfg.EvaluationTimeout())
	}
	if cfg.Window() != 8 {
		t.Errorf("history window = %d, want 8", cfg.Window())
	}
}
