// Package simulator publishes drifting telemetry for a synthetic UPS fleet,
// for local runs and end-to-end tests of the monitoring engine.
package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/logger"
)

// wireReading is the JSON payload units publish. Field names match the
// collector's decode contract.
type wireReading struct {
	UnitID        string  `json:"unit_id"`
	TS            int64   `json:"ts"`
	PowerInput    float64 `json:"power_input"`
	PowerOutput   float64 `json:"power_output"`
	BatteryLevel  float64 `json:"battery_level"`
	Temperature   float64 `json:"temperature"`
	Efficiency    float64 `json:"efficiency"`
	Load          float64 `json:"load"`
	VoltageInput  float64 `json:"voltage_input"`
	VoltageOutput float64 `json:"voltage_output"`
	Frequency     float64 `json:"frequency"`
	Capacity      float64 `json:"capacity"`
	CriticalLoad  float64 `json:"critical_load"`
	Uptime        float64 `json:"uptime"`
}

func toWire(r model.Reading) wireReading {
	return wireReading{
		UnitID:        r.UnitID,
		TS:            r.Timestamp.Unix(),
		PowerInput:    r.PowerInput,
		PowerOutput:   r.PowerOutput,
		BatteryLevel:  r.BatteryLevel,
		Temperature:   r.Temperature,
		Efficiency:    r.Efficiency,
		Load:          r.Load,
		VoltageInput:  r.VoltageInput,
		VoltageOutput: r.VoltageOutput,
		Frequency:     r.Frequency,
		Capacity:      r.Capacity,
		CriticalLoad:  r.CriticalLoad,
		Uptime:        r.Uptime,
	}
}

// Simulator drives a fleet of simulated units over MQTT. It pushes state on
// the configured interval and answers poll requests.
type Simulator struct {
	cfg   Config
	units []*SimulatedUnit
	cli   paho.Client
	log   logger.Logger

	mu   sync.Mutex
	last map[string]model.Reading
}

// New builds a simulator and its fleet. The broker connection happens in Run.
func New(cfg Config) (*Simulator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		cfg:   cfg,
		units: GenerateFleet(cfg),
		log:   logger.New("simulator"),
		last:  make(map[string]model.Reading),
	}, nil
}

// Units exposes the fleet, for tests.
func (s *Simulator) Units() []*SimulatedUnit {
	return s.units
}

// Run connects and publishes until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	opts := paho.NewClientOptions().AddBroker(s.cfg.Broker).SetClientID(s.cfg.ClientID)
	opts.AutoReconnect = true
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect broker: %w", token.Error())
	}
	s.cli = cli
	defer cli.Disconnect(250)

	if token := cli.Subscribe(s.cfg.RequestTopic, 0, s.onPoll); token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe poll requests: %w", token.Error())
	}

	interval := time.Duration(s.cfg.IntervalSeconds) * time.Second
	s.step(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.step(interval)
		case <-ctx.Done():
			return nil
		}
	}
}

// step advances every unit and pushes its state.
func (s *Simulator) step(dt time.Duration) {
	prefix := strings.TrimSuffix(s.cfg.StatePrefix, "/")
	for _, u := range s.units {
		r := u.Step(dt)
		s.mu.Lock()
		s.last[u.ID] = r
		s.mu.Unlock()
		s.publish(fmt.Sprintf("%s/%s", prefix, u.ID), r)
	}
	s.log.Debugf("published %d readings", len(s.units))
}

// onPoll answers a telemetry request with each unit's last snapshot.
func (s *Simulator) onPoll(_ paho.Client, _ paho.Message) {
	prefix := strings.TrimSuffix(s.cfg.ResponsePrefix, "/")
	s.mu.Lock()
	snapshot := make([]model.Reading, 0, len(s.last))
	for _, r := range s.last {
		snapshot = append(snapshot, r)
	}
	s.mu.Unlock()
	for _, r := range snapshot {
		s.publish(fmt.Sprintf("%s/%s", prefix, r.UnitID), r)
	}
}

func (s *Simulator) publish(topic string, r model.Reading) {
	payload, err := json.Marshal(toWire(r))
	if err != nil {
		s.log.Errorf("marshal reading: %v", err)
		return
	}
	if token := s.cli.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		s.log.Errorf("publish %s: %v", topic, token.Error())
	}
}
