package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridsentry/upswatch/config"
	"github.com/gridsentry/upswatch/core/features"
	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/logger"
	infmqtt "github.com/gridsentry/upswatch/infra/mqtt"
)

// Collector gathers UPS readings over MQTT, either pushed by units or polled,
// and caches the newest reading per unit for the evaluation engine.
type Collector struct {
	cfg config.TelemetryConfig
	cli paho.Client
	log logger.Logger

	mu    sync.RWMutex
	cache map[string]model.Reading

	respCh chan telemetryMessage

	received    prometheus.Counter
	rejected    prometheus.Counter
	pollReq     prometheus.Counter
	pollResp    prometheus.Counter
	pollTimeout prometheus.Counter
	lastCollect prometheus.Gauge
	latency     prometheus.Histogram
}

type telemetryMessage struct {
	UnitID  string
	Payload []byte
	Arrived time.Time
}

// NewCollector connects to MQTT and prepares telemetry collection.
func NewCollector(mqttCfg infmqtt.Config, cfg config.TelemetryConfig) (*Collector, error) {
	opts, err := infmqtt.NewClientOptions(mqttCfg)
	if err != nil {
		return nil, err
	}
	id := mqttCfg.ClientID
	if id != "" {
		id += "-telemetry"
	} else {
		id = "telemetry-" + uuid.NewString()
	}
	opts.SetClientID(id)
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c := &Collector{
		cfg:         cfg,
		cli:         cli,
		log:         logger.New("telemetry"),
		cache:       make(map[string]model.Reading),
		respCh:      make(chan telemetryMessage, 100),
		received:    prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_readings_received_total", Help: "Number of readings accepted into the cache"}),
		rejected:    prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_readings_rejected_total", Help: "Number of readings rejected at decode"}),
		pollReq:     prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_requests_total", Help: "Number of telemetry poll requests"}),
		pollResp:    prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_responses_total", Help: "Number of telemetry poll responses"}),
		pollTimeout: prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_poll_timeout_total", Help: "Number of telemetry poll timeouts"}),
		lastCollect: prometheus.NewGauge(prometheus.GaugeOpts{Name: "telemetry_last_collect_timestamp_seconds", Help: "Unix timestamp of last telemetry collection"}),
		latency:     prometheus.NewHistogram(prometheus.HistogramOpts{Name: "telemetry_collect_latency_seconds", Help: "Latency of telemetry collection", Buckets: prometheus.DefBuckets}),
	}
	registerOrReuse(&c.received)
	registerOrReuse(&c.rejected)
	registerOrReuse(&c.pollReq)
	registerOrReuse(&c.pollResp)
	registerOrReuse(&c.pollTimeout)
	registerOrReuse(&c.lastCollect)
	registerOrReuse(&c.latency)
	return c, nil
}

// registerOrReuse registers the collector on the default registry, adopting
// the existing one so a second Collector instance does not panic.
func registerOrReuse[T prometheus.Collector](c *T) {
	if err := prometheus.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := any(are.ExistingCollector).(T); ok {
				*c = existing
			}
		}
	}
}

// Start runs telemetry collection until context is done.
func (c *Collector) Start(ctx context.Context) {
	mode := strings.ToLower(c.cfg.Mode)
	if mode == "" {
		mode = "push"
	}
	if mode == "push" || mode == "hybrid" {
		topic := strings.TrimSuffix(c.cfg.StatePrefix, "/") + "/+"
		if token := c.cli.Subscribe(topic, 0, c.onPush); token.Wait() && token.Error() != nil {
			c.log.Errorf("subscribe state: %v", token.Error())
		}
	}
	if mode == "pull" || mode == "hybrid" {
		topic := strings.TrimSuffix(c.cfg.ResponsePrefix, "/") + "/+"
		if token := c.cli.Subscribe(topic, 0, c.onResponse); token.Wait() && token.Error() != nil {
			c.log.Errorf("subscribe response: %v", token.Error())
		}
		go c.pollLoop(ctx)
	}
	<-ctx.Done()
	if c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}

// Latest returns the newest cached reading per unit in unit order. Units whose
// last reading is older than the configured max age are skipped.
func (c *Collector) Latest(_ context.Context) ([]model.Reading, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	maxAge := c.cfg.MaxAge()
	cutoff := time.Now().Add(-maxAge)
	res := make([]model.Reading, 0, len(c.cache))
	for _, r := range c.cache {
		if maxAge > 0 && r.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].UnitID < res[j].UnitID })
	return res, nil
}

// Set stores a reading directly, bypassing MQTT.
func (c *Collector) Set(r model.Reading) {
	c.mu.Lock()
	c.cache[r.UnitID] = r
	c.mu.Unlock()
}

func (c *Collector) onPush(_ paho.Client, msg paho.Message) {
	if err := c.process(msg.Payload(), msg.Topic(), "push"); err != nil {
		c.log.Errorf("push decode: %v", err)
	}
}

func (c *Collector) onResponse(_ paho.Client, msg paho.Message) {
	c.respCh <- telemetryMessage{UnitID: extractID(msg.Topic()), Payload: msg.Payload(), Arrived: time.Now()}
}

func extractID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return ""
}

func (c *Collector) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(c.cfg.Interval()) * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.doPoll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (c *Collector) doPoll(ctx context.Context) {
	start := time.Now()
	expected := make(map[string]struct{})
	c.mu.RLock()
	for id := range c.cache {
		expected[id] = struct{}{}
	}
	c.mu.RUnlock()
	c.pollReq.Inc()
	token := c.cli.Publish(c.cfg.RequestTopic, 0, false, []byte("poll"))
	token.Wait()
	timeout := time.NewTimer(time.Duration(c.cfg.Timeout()) * time.Second)
	defer timeout.Stop()
	for {
		select {
		case resp := <-c.respCh:
			if err := c.process(resp.Payload, "", "poll"); err != nil {
				c.log.Errorf("poll decode: %v", err)
			} else {
				c.pollResp.Inc()
				c.latency.Observe(time.Since(start).Seconds())
				delete(expected, resp.UnitID)
			}
		case <-timeout.C:
			for range expected {
				c.pollTimeout.Inc()
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// wireReading decodes a telemetry payload. Pointer fields distinguish absent
// values from zero values so absence never defaults silently.
type wireReading struct {
	UnitID        string   `json:"unit_id"`
	Name          string   `json:"name"`
	TS            *int64   `json:"ts"`
	PowerInput    *float64 `json:"power_input"`
	PowerOutput   *float64 `json:"power_output"`
	BatteryLevel  *float64 `json:"battery_level"`
	Temperature   *float64 `json:"temperature"`
	Efficiency    *float64 `json:"efficiency"`
	Load          *float64 `json:"load"`
	VoltageInput  *float64 `json:"voltage_input"`
	VoltageOutput *float64 `json:"voltage_output"`
	Frequency     *float64 `json:"frequency"`
	Capacity      *float64 `json:"capacity"`
	CriticalLoad  *float64 `json:"critical_load"`
	Uptime        *float64 `json:"uptime"`
	FailureRisk   *float64 `json:"failure_risk"`
}

func (c *Collector) process(payload []byte, topic, origin string) error {
	var msg wireReading
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.rejected.Inc()
		return err
	}
	if msg.UnitID == "" {
		msg.UnitID = extractID(topic)
	}
	if msg.UnitID == "" {
		c.rejected.Inc()
		return features.MissingField("unit_id")
	}
	required := []struct {
		name string
		val  *float64
	}{
		{"power_input", msg.PowerInput},
		{"power_output", msg.PowerOutput},
		{"battery_level", msg.BatteryLevel},
		{"temperature", msg.Temperature},
		{"efficiency", msg.Efficiency},
		{"load", msg.Load},
		{"voltage_input", msg.VoltageInput},
		{"voltage_output", msg.VoltageOutput},
		{"frequency", msg.Frequency},
		{"capacity", msg.Capacity},
		{"critical_load", msg.CriticalLoad},
		{"uptime", msg.Uptime},
	}
	for _, f := range required {
		if f.val == nil {
			c.rejected.Inc()
			return features.MissingField(f.name)
		}
	}
	ts := time.Now()
	if msg.TS != nil {
		ts = time.Unix(*msg.TS, 0)
	}
	r := model.Reading{
		UnitID:        msg.UnitID,
		Name:          msg.Name,
		Timestamp:     ts,
		PowerInput:    *msg.PowerInput,
		PowerOutput:   *msg.PowerOutput,
		BatteryLevel:  *msg.BatteryLevel,
		Temperature:   *msg.Temperature,
		Efficiency:    *msg.Efficiency,
		Load:          *msg.Load,
		VoltageInput:  *msg.VoltageInput,
		VoltageOutput: *msg.VoltageOutput,
		Frequency:     *msg.Frequency,
		Capacity:      *msg.Capacity,
		CriticalLoad:  *msg.CriticalLoad,
		Uptime:        *msg.Uptime,
	}
	if msg.FailureRisk != nil {
		r.FailureRisk = *msg.FailureRisk
	}
	c.Set(r)
	c.received.Inc()
	c.lastCollect.SetToCurrentTime()
	c.log.Debugw("reading cached", map[string]any{"unit": r.UnitID, "origin": origin})
	return nil
}
