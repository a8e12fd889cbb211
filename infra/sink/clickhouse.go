package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/logger"
)

// ClickHouseConfig defines the connection settings for the reading archive.
type ClickHouseConfig struct {
	Addr     string `json:"addr"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ClickHouseSink archives raw readings and predictions in ClickHouse. It also
// serves the recent-reading window the history risk score is derived from.
type ClickHouseSink struct {
	conn driver.Conn
	log  logger.Logger
}

const readingsDDL = `CREATE TABLE IF NOT EXISTS ups_readings (
    ts DateTime64(3),
    unit_id String,
    power_input Float64,
    power_output Float64,
    battery_level Float64,
    temperature Float64,
    efficiency Float64,
    load Float64,
    voltage_input Float64,
    voltage_output Float64,
    frequency Float64,
    capacity Float64,
    critical_load Float64,
    uptime Float64,
    failure_risk Float64
) ENGINE = MergeTree()
ORDER BY (unit_id, ts)`

const predictionsDDL = `CREATE TABLE IF NOT EXISTS ups_predictions (
    ts DateTime64(3),
    id String,
    unit_id String,
    failure_probability Float64,
    confidence Float64,
    status String,
    risk_category String,
    leading_reason String
) ENGINE = MergeTree()
ORDER BY (unit_id, ts)`

// NewClickHouseSink connects, pings and bootstraps the schema.
func NewClickHouseSink(cfg ClickHouseConfig) (*ClickHouseSink, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	s := &ClickHouseSink{conn: conn, log: logger.New("clickhouse-sink")}
	for _, ddl := range []string{readingsDDL, predictionsDDL} {
		if err := conn.Exec(ctx, ddl); err != nil {
			return nil, fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return s, nil
}

// Save records the prediction row.
func (s *ClickHouseSink) Save(ctx context.Context, p model.Prediction) error {
	const q = `INSERT INTO ups_predictions
        (ts, id, unit_id, failure_probability, confidence, status, risk_category, leading_reason)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if err := s.conn.Exec(ctx, q,
		p.Timestamp, p.ID, p.UnitID, p.FailureProbability, p.Confidence,
		string(p.Status), p.RiskCategory, p.LeadingReason(),
	); err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// ArchiveReading records the raw snapshot.
func (s *ClickHouseSink) ArchiveReading(ctx context.Context, r model.Reading) error {
	const q = `INSERT INTO ups_readings
        (ts, unit_id, power_input, power_output, battery_level, temperature,
         efficiency, load, voltage_input, voltage_output, frequency, capacity,
         critical_load, uptime, failure_risk)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := s.conn.Exec(ctx, q,
		r.Timestamp, r.UnitID, r.PowerInput, r.PowerOutput, r.BatteryLevel,
		r.Temperature, r.Efficiency, r.Load, r.VoltageInput, r.VoltageOutput,
		r.Frequency, r.Capacity, r.CriticalLoad, r.Uptime, r.FailureRisk,
	); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// RecentReadings returns a unit's newest archived snapshots, newest first.
func (s *ClickHouseSink) RecentReadings(ctx context.Context, unitID string, limit int) ([]model.Reading, error) {
	const q = `SELECT ts, unit_id, power_input, power_output, battery_level,
        temperature, efficiency, load, voltage_input, voltage_output,
        frequency, capacity, critical_load, uptime, failure_risk
        FROM ups_readings WHERE unit_id = ? ORDER BY ts DESC LIMIT ?`
	rows, err := s.conn.Query(ctx, q, unitID, limit)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()
	var res []model.Reading
	for rows.Next() {
		var r model.Reading
		if err := rows.Scan(&r.Timestamp, &r.UnitID, &r.PowerInput, &r.PowerOutput,
			&r.BatteryLevel, &r.Temperature, &r.Efficiency, &r.Load,
			&r.VoltageInput, &r.VoltageOutput, &r.Frequency, &r.Capacity,
			&r.CriticalLoad, &r.Uptime, &r.FailureRisk); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close releases the connection.
func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
