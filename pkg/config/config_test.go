package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, `
environment: test
scanner:
  interval: 2m
  top_n: 5
detectors:
  pump_threshold: 7.5
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Scanner.Interval != 2*time.Minute {
		t.Fatalf("scanner.interval = %v", c.Scanner.Interval)
	}
	if c.Scanner.TopN != 5 {
		t.Fatalf("scanner.top_n = %d", c.Scanner.TopN)
	}
	if c.Scanner.Backoff != 30*time.Second {
		t.Fatalf("scanner.backoff default lost: %v", c.Scanner.Backoff)
	}
	if c.Validator.Interval != 180*time.Second {
		t.Fatalf("validator.interval default lost: %v", c.Validator.Interval)
	}
	if c.Detectors.PumpThreshold != 7.5 || c.Detectors.PumpWindow != 15 {
		t.Fatalf("detectors = %+v", c.Detectors)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c := Default()
	env := map[string]string{
		"SYMBOL_LIMIT":  "25",
		"KAFKA_ENABLED": "true",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
		"REDIS_ADDR":    "cache:6380",
		"SQLITE_PATH":   "/tmp/x.db",
	}
	c.applyEnv(func(k string) string { return env[k] })

	if c.Scanner.SymbolLimit != 25 {
		t.Fatalf("symbol limit = %d", c.Scanner.SymbolLimit)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka = %+v", c.Kafka)
	}
	if c.Redis.Host != "cache" || c.Redis.Port != 6380 {
		t.Fatalf("redis = %s:%d", c.Redis.Host, c.Redis.Port)
	}
	if c.Store.Path != "/tmp/x.db" {
		t.Fatalf("store path = %s", c.Store.Path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no environment", func(c *Config) { c.Environment = "" }, false},
		{"short candle history", func(c *Config) { c.Exchange.CandleLimit = 40 }, false},
		{"zero workers", func(c *Config) { c.Scanner.Workers = 0 }, false},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, false},
		{"clickhouse without host", func(c *Config) { c.ClickHouse.Enabled = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
