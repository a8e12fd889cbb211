package sink

import (
	"github.com/gridsentry/upswatch/core/factory"
	coresink "github.com/gridsentry/upswatch/core/sink"
)

// init registers the built-in result sinks.
func init() {
	_ = coresink.RegisterSink("nop", func(map[string]any) (coresink.Sink, error) {
		return coresink.Nop{}, nil
	})

	_ = coresink.RegisterSink("prometheus", func(map[string]any) (coresink.Sink, error) {
		return NewPromSink()
	})

	_ = coresink.RegisterSink("influx", func(conf map[string]any) (coresink.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coresink.RegisterSink("clickhouse", func(conf map[string]any) (coresink.Sink, error) {
		var c ClickHouseConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewClickHouseSink(c)
	})

	_ = coresink.RegisterSink("redis", func(conf map[string]any) (coresink.Sink, error) {
		var c RedisConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRedisSink(c)
	})
}
