package sink

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/gridsentry/upswatch/core/model"
	coresink "github.com/gridsentry/upswatch/core/sink"
	"github.com/gridsentry/upswatch/infra/logger"
)

// InfluxSink writes predictions, alerts and raw readings to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a Nop sink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coresink.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coresink.Nop{}
	}
	return sink
}

// Save writes the prediction as a point tagged by unit and status.
func (s *InfluxSink) Save(ctx context.Context, p model.Prediction) error {
	point := write.NewPointWithMeasurement("ups_prediction").
		AddTag("unit_id", p.UnitID).
		AddTag("status", string(p.Status)).
		AddTag("risk_category", p.RiskCategory).
		AddField("failure_probability", round3(p.FailureProbability)).
		AddField("confidence", round3(p.Confidence)).
		AddField("reason_count", len(p.Reasons)).
		AddField("leading_reason", p.LeadingReason()).
		SetTime(p.Timestamp)
	return s.writeAPI.WritePoint(ctx, point)
}

// RaiseAlert writes the alert as a point.
func (s *InfluxSink) RaiseAlert(ctx context.Context, a model.Alert) error {
	point := write.NewPointWithMeasurement("ups_alert").
		AddTag("unit_id", a.UnitID).
		AddTag("severity", string(a.Severity)).
		AddTag("type", a.Type).
		AddField("title", a.Title).
		AddField("message", a.Message).
		AddField("recommended_action", a.RecommendedAction).
		AddField("confidence", round3(a.Confidence)).
		SetTime(a.CreatedAt)
	return s.writeAPI.WritePoint(ctx, point)
}

// ArchiveReading writes a raw telemetry snapshot.
func (s *InfluxSink) ArchiveReading(ctx context.Context, r model.Reading) error {
	point := write.NewPointWithMeasurement("ups_reading").
		AddTag("unit_id", r.UnitID).
		AddField("power_input", round3(r.PowerInput)).
		AddField("power_output", round3(r.PowerOutput)).
		AddField("battery_level", round3(r.BatteryLevel)).
		AddField("temperature", round3(r.Temperature)).
		AddField("efficiency", round3(r.Efficiency)).
		AddField("load", round3(r.Load)).
		AddField("voltage_input", round3(r.VoltageInput)).
		AddField("voltage_output", round3(r.VoltageOutput)).
		AddField("frequency", round3(r.Frequency)).
		AddField("capacity", round3(r.Capacity)).
		AddField("critical_load", round3(r.CriticalLoad)).
		AddField("uptime", round3(r.Uptime)).
		AddField("failure_risk", round3(r.FailureRisk)).
		SetTime(r.Timestamp)
	return s.writeAPI.WritePoint(ctx, point)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
