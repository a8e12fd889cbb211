package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gridsentry/upswatch/core/model"
	"github.com/gridsentry/upswatch/infra/logger"
)

// RedisConfig defines the connection and alerting settings for the Redis
// state sink.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	// AlertChannel is the pub/sub channel critical alerts are published on.
	AlertChannel string `json:"alert_channel"`
	// CooldownSeconds suppresses repeat alerts per unit within the window.
	CooldownSeconds int `json:"cooldown_seconds"`
}

func (c RedisConfig) channel() string {
	if c.AlertChannel == "" {
		return "ups:alerts"
	}
	return c.AlertChannel
}

func (c RedisConfig) cooldown() time.Duration {
	if c.CooldownSeconds <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.CooldownSeconds) * time.Second
}

// RedisSink keeps the latest prediction state per unit in a hash and
// publishes critical alerts on a channel, deduplicated per unit within a
// cooldown window.
type RedisSink struct {
	client   *redis.Client
	channel  string
	cooldown time.Duration
	log      logger.Logger
}

// NewRedisSink connects and pings the server.
func NewRedisSink(cfg RedisConfig) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisSink{
		client:   client,
		channel:  cfg.channel(),
		cooldown: cfg.cooldown(),
		log:      logger.New("redis-sink"),
	}, nil
}

func stateKey(unitID string) string    { return "ups:" + unitID + ":state" }
func cooldownKey(unitID string) string { return "ups:" + unitID + ":alert_cooldown" }

// Save stores the prediction as the unit's latest state.
func (s *RedisSink) Save(ctx context.Context, p model.Prediction) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}
	fields := map[string]any{
		"status":              string(p.Status),
		"failure_probability": p.FailureProbability,
		"confidence":          p.Confidence,
		"risk_category":       p.RiskCategory,
		"updated_at":          p.Timestamp.Unix(),
		"prediction":          string(payload),
	}
	if err := s.client.HSet(ctx, stateKey(p.UnitID), fields).Err(); err != nil {
		return fmt.Errorf("hset state: %w", err)
	}
	return nil
}

// RaiseAlert publishes the alert unless the unit is still in cooldown. The
// dedup gate is SET NX with the cooldown TTL, so concurrent monitors agree
// on a single publish.
func (s *RedisSink) RaiseAlert(ctx context.Context, a model.Alert) error {
	ok, err := s.client.SetNX(ctx, cooldownKey(a.UnitID), a.ID, s.cooldown).Result()
	if err != nil {
		return fmt.Errorf("alert dedup: %w", err)
	}
	if !ok {
		s.log.Debugf("alert for %s suppressed by cooldown", a.UnitID)
		return nil
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
