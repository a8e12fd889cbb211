package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/gridsentry/upswatch/config"
	"github.com/gridsentry/upswatch/core/classifier"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/core/monitor"
	"github.com/gridsentry/upswatch/core/monitor/logging"
	"github.com/gridsentry/upswatch/core/severity"
	coresink "github.com/gridsentry/upswatch/core/sink"
	"github.com/gridsentry/upswatch/core/unitstatus"
	infsink "github.com/gridsentry/upswatch/infra/sink"
	"github.com/gridsentry/upswatch/internal/eventbus"
	"github.com/gridsentry/upswatch/jobs/fleetreport"
)

// gaugeValue reads one labelled gauge off the registry.
func gaugeValue(t *testing.T, reg *prometheus.Registry, name, unitID string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "unit_id" && l.GetValue() == unitID {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s for %s not found", name, unitID)
	return 0
}

func reading(unit string, battery float64) model.Reading {
	return model.Reading{
		UnitID:        unit,
		Timestamp:     time.Now().UTC(),
		PowerInput:    500,
		PowerOutput:   490,
		BatteryLevel:  battery,
		Temperature:   26,
		Load:          45,
		Efficiency:    96,
		VoltageInput:  230,
		VoltageOutput: 229,
		Frequency:     50,
		Capacity:      3000,
		CriticalLoad:  1200,
		Uptime:        99.9,
	}
}

// TestMonitorPipeline runs a full cycle through the engine with a fan-out
// sink, the audit log, the status store, the event bus and the report job,
// and checks that every surface observes the same outcome.
func TestMonitorPipeline(t *testing.T) {
	monitor.ResetMetrics(nil)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	prom, err := infsink.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	multi := coresink.NewMulti(prom, coresink.Nop{})

	store, err := logging.NewSQLiteStore(filepath.Join(t.TempDir(), "monitor.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status := unitstatus.NewMemoryStore()
	bus := eventbus.New(32)
	defer bus.Close()

	reportPath := filepath.Join(t.TempDir(), "health.json")
	job := fleetreport.New(config.ReportConfig{Enabled: true, Path: reportPath, TopRisks: 5}, bus)
	go job.Run()

	src := monitor.Static{
		reading("ups0001", 95),
		reading("ups0002", 15),
		reading("ups0003", 95),
	}
	engine, err := monitor.NewEngine(src, &classifier.Mock{Probability: 0.1}, severity.New(severity.Config{}), multi, nil, monitor.Config{})
	require.NoError(t, err)
	engine.SetStatusStore(status)
	engine.SetBus(bus)
	engine.SetLogStore(store)

	rec, err := engine.EvaluateCycle(ctx)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if rec.UnitsEvaluated != 3 || rec.UnitsFailed != 0 {
		t.Fatalf("record = %+v", rec)
	}

	// Status store view.
	critical := status.List(unitstatus.Filter{State: model.StatusCritical})
	if len(critical) != 1 || critical[0].UnitID != "ups0002" {
		t.Fatalf("critical statuses = %+v", critical)
	}

	// Audit log view.
	records, err := store.Query(ctx, logging.Query{UnitID: "ups0002"})
	if err != nil {
		t.Fatalf("query log: %v", err)
	}
	var kinds []logging.Kind
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}
	if len(records) != 2 {
		t.Fatalf("ups0002 log kinds = %v, want prediction and alert", kinds)
	}

	// Prometheus view.
	if v := gaugeValue(t, reg, "ups_failure_probability", "ups0002"); v != 0.1 {
		t.Errorf("probability gauge = %v", v)
	}
	if v := gaugeValue(t, reg, "ups_unit_status", "ups0002"); v != 2 {
		t.Errorf("status gauge = %v, want critical", v)
	}

	// Report job view, fed by the cycle event.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if rep, ok := job.Latest(); ok {
			if rep.FleetSize != 3 || rep.Critical != 1 || rep.Healthy != 2 {
				t.Fatalf("report = %+v", rep)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("report job never produced a report")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
