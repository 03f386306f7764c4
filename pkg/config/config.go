package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
		Topic  string `yaml:"topic"`
	} `yaml:"log"`
	Exchange struct {
		BaseURL           string        `yaml:"base_url"`
		Category          string        `yaml:"category"`
		QuoteCoin         string        `yaml:"quote_coin"`
		Timeframe         string        `yaml:"timeframe"`
		CandleLimit       int           `yaml:"candle_limit"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Burst             int           `yaml:"burst"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"exchange"`
	Scanner struct {
		Interval        time.Duration `yaml:"interval"`
		Backoff         time.Duration `yaml:"backoff"`
		Workers         int           `yaml:"workers"`
		SymbolLimit     int           `yaml:"symbol_limit"`
		TopN            int           `yaml:"top_n"`
		ItemDelay       time.Duration `yaml:"item_delay"`
		SnapshotSignals int           `yaml:"snapshot_signals"`
		SnapshotAlerts  int           `yaml:"snapshot_alerts"`
		MoversLimit     int           `yaml:"movers_limit"`
	} `yaml:"scanner"`
	Validator struct {
		Interval    time.Duration `yaml:"interval"`
		Backoff     time.Duration `yaml:"backoff"`
		Workers     int           `yaml:"workers"`
		ItemDelay   time.Duration `yaml:"item_delay"`
		ActiveLimit int           `yaml:"active_limit"`
		LockTTL     time.Duration `yaml:"lock_ttl"`
	} `yaml:"validator"`
	Detectors Detectors `yaml:"detectors"`
	Store     struct {
		Path string `yaml:"path"`
	} `yaml:"store"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Topics       struct {
			Signals     string `yaml:"signals"`
			Alerts      string `yaml:"alerts"`
			Validations string `yaml:"validations"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
}

// Detectors holds the tunable thresholds of the signal engine.
type Detectors struct {
	SmartMoneyVolumeRatio float64 `yaml:"smart_money_volume_ratio"`
	LiquidityLookback     int     `yaml:"liquidity_lookback"`
	WhaleZScore           float64 `yaml:"whale_zscore"`
	PumpWindow            int     `yaml:"pump_window"`
	PumpThreshold         float64 `yaml:"pump_threshold"`
	UTSensitivity         float64 `yaml:"ut_sensitivity"`
	UTATRPeriod           int     `yaml:"ut_atr_period"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("EXCHANGE_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := getenv("SYMBOL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Scanner.SymbolLimit = n
		}
	}
	if v := getenv("SQLITE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := getenv("HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("KAFKA_ENABLED"); v != "" {
		c.Kafka.Enabled, _ = strconv.ParseBool(v)
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			if n, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = n
			}
		}
	}
	if v := getenv("REDIS_ENABLED"); v != "" {
		c.Redis.Enabled, _ = strconv.ParseBool(v)
	}
	if v := getenv("CLICKHOUSE_ENABLED"); v != "" {
		c.ClickHouse.Enabled, _ = strconv.ParseBool(v)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Exchange.BaseURL == "" {
		return fmt.Errorf("exchange.base_url is required")
	}
	if c.Exchange.CandleLimit < 50 {
		return fmt.Errorf("exchange.candle_limit must be >= 50, got %d", c.Exchange.CandleLimit)
	}
	if c.Scanner.Interval <= 0 || c.Validator.Interval <= 0 {
		return fmt.Errorf("scanner.interval and validator.interval must be positive")
	}
	if c.Scanner.Workers < 1 || c.Validator.Workers < 1 {
		return fmt.Errorf("scanner.workers and validator.workers must be >= 1")
	}
	if c.Scanner.TopN < 1 {
		return fmt.Errorf("scanner.top_n must be >= 1, got %d", c.Scanner.TopN)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Detectors.PumpWindow < 2 {
		return fmt.Errorf("detectors.pump_window must be >= 2, got %d", c.Detectors.PumpWindow)
	}
	if c.Detectors.UTATRPeriod < 1 {
		return fmt.Errorf("detectors.ut_atr_period must be >= 1, got %d", c.Detectors.UTATRPeriod)
	}
	return nil
}
