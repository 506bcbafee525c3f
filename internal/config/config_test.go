package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Fatalf("default port = %s; want 8082", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/contas.db" {
		t.Fatalf("default db path = %s", cfg.SQLiteDBPath)
	}
	if cfg.AMQPExchange != "contas" || cfg.AMQPQueue != "ledger_events" {
		t.Fatalf("default amqp names = %s/%s", cfg.AMQPExchange, cfg.AMQPQueue)
	}
	if cfg.SnapshotInterval != 5*time.Minute {
		t.Fatalf("default snapshot interval = %v", cfg.SnapshotInterval)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SNAPSHOT_MONTHS", "6")
	t.Setenv("SNAPSHOT_INTERVAL", "1m")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Fatalf("port = %s; want 9090", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("redis addr = %s", cfg.RedisAddr)
	}
	if cfg.SnapshotMonths != 6 || cfg.SnapshotInterval != time.Minute {
		t.Fatalf("worker config = %d/%v", cfg.SnapshotMonths, cfg.SnapshotInterval)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults ok", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "http" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "must be between"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "cannot be empty"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "invalid AMQP URL scheme"},
		{"missing queue", func(c *Config) { c.AMQPQueue = "" }, "queue name cannot be empty"},
		{"snapshot months zero", func(c *Config) { c.SnapshotMonths = 0 }, "must be at least 1"},
		{"snapshot interval too small", func(c *Config) { c.SnapshotInterval = time.Millisecond }, "at least 1 second"},
	}
	for _, tc := range cases {
		cfg := Load()
		cfg.SQLiteDBPath = t.TempDir() + "/contas.db"
		tc.mutate(cfg)

		err := cfg.Validate()
		if tc.wantErr == "" {
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tc.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: error = %v; want substring %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "nope"
	cfg.SQLiteDBPath = ""
	cfg.AMQPExchange = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"invalid port", "cannot be empty", "exchange name"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q missing %q", err.Error(), want)
		}
	}
}
