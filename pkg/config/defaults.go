package config

import "time"

// Default returns a configuration populated with the production defaults.
// YAML values are decoded on top of it.
func Default() *Config {
	c := &Config{Environment: "development"}

	c.Server.Port = 5000
	c.Server.ReadTimeout = 10 * time.Second
	c.Server.WriteTimeout = 30 * time.Second
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Server.RateLimit.Capacity = 10
	c.Server.RateLimit.RefillPerSec = 0.5

	c.Metrics.Enabled = true
	c.Metrics.Path = "/metrics"

	c.Log.Level = "info"
	c.Log.Format = "console"
	c.Log.Output = "stdout"
	c.Log.Topic = "signalscan.logs"

	c.Exchange.BaseURL = "https://api.bybit.com"
	c.Exchange.Category = "linear"
	c.Exchange.QuoteCoin = "USDT"
	c.Exchange.Timeframe = "15m"
	c.Exchange.CandleLimit = 200
	c.Exchange.RequestsPerSecond = 8
	c.Exchange.Burst = 4
	c.Exchange.Timeout = 15 * time.Second

	c.Scanner.Interval = 60 * time.Second
	c.Scanner.Backoff = 30 * time.Second
	c.Scanner.Workers = 4
	c.Scanner.SymbolLimit = 100
	c.Scanner.TopN = 3
	c.Scanner.ItemDelay = 300 * time.Millisecond
	c.Scanner.SnapshotSignals = 100
	c.Scanner.SnapshotAlerts = 50
	c.Scanner.MoversLimit = 20

	c.Validator.Interval = 180 * time.Second
	c.Validator.Backoff = 60 * time.Second
	c.Validator.Workers = 2
	c.Validator.ItemDelay = 200 * time.Millisecond
	c.Validator.ActiveLimit = 100
	c.Validator.LockTTL = 30 * time.Second

	c.Detectors = Detectors{
		SmartMoneyVolumeRatio: 2.0,
		LiquidityLookback:     20,
		WhaleZScore:           2.5,
		PumpWindow:            15,
		PumpThreshold:         5,
		UTSensitivity:         1,
		UTATRPeriod:           10,
	}

	c.Store.Path = "data/signals.db"

	c.ClickHouse.Port = 9000
	c.ClickHouse.Database = "signalscan"
	c.ClickHouse.DialTimeout = 5 * time.Second
	c.ClickHouse.ReadTimeout = 10 * time.Second

	c.Kafka.RequiredAcks = -1
	c.Kafka.Compression = "snappy"
	c.Kafka.Topics.Signals = "signalscan.signals"
	c.Kafka.Topics.Alerts = "signalscan.alerts"
	c.Kafka.Topics.Validations = "signalscan.validations"
	c.Kafka.Producer.MaxAttempts = 3
	c.Kafka.Producer.Linger = 200 * time.Millisecond
	c.Kafka.Producer.BatchBytes = 1 << 20
	c.Kafka.Producer.BatchSize = 100
	c.Kafka.Producer.WriteTimeout = 10 * time.Second
	c.Kafka.Producer.ReadTimeout = 10 * time.Second
	c.Kafka.Consumer.GroupID = "signalscan-archive"
	c.Kafka.Consumer.Workers = 2
	c.Kafka.Consumer.RetryMax = 3
	c.Kafka.Consumer.BackoffMin = 200 * time.Millisecond
	c.Kafka.Consumer.BackoffMax = 5 * time.Second
	c.Kafka.Consumer.DLQTopic = "signalscan.dlq"

	c.Redis.Host = "localhost"
	c.Redis.Port = 6379
	c.Redis.Prefix = "signalscan"

	return c
}
