package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "JOURNAL_DIR", "CHECKPOINT_INTERVAL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "MAX_ORDER_QTY", "DEPTH_LEVELS",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.JournalDir != "data/journal" {
		t.Errorf("JournalDir = %q, want data/journal", cfg.JournalDir)
	}
	if cfg.CheckpointInterval != 5*time.Second {
		t.Errorf("CheckpointInterval = %v, want 5s", cfg.CheckpointInterval)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("KafkaBrokers = %v, want nil", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "venue.trades" {
		t.Errorf("KafkaTopic = %q, want venue.trades", cfg.KafkaTopic)
	}
	if cfg.MaxOrderQty != 1_000_000 {
		t.Errorf("MaxOrderQty = %d, want 1000000", cfg.MaxOrderQty)
	}
	if cfg.DepthLevels != 10 {
		t.Errorf("DepthLevels = %d, want 10", cfg.DepthLevels)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JOURNAL_DIR", "/tmp/journal")
	t.Setenv("CHECKPOINT_INTERVAL", "500ms")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom.trades")
	t.Setenv("MAX_ORDER_QTY", "500")
	t.Setenv("DEPTH_LEVELS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.JournalDir != "/tmp/journal" {
		t.Errorf("JournalDir = %q", cfg.JournalDir)
	}
	if cfg.CheckpointInterval != 500*time.Millisecond {
		t.Errorf("CheckpointInterval = %v, want 500ms", cfg.CheckpointInterval)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[0] != "broker1:9092" || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.KafkaTopic != "custom.trades" {
		t.Errorf("KafkaTopic = %q", cfg.KafkaTopic)
	}
	if cfg.MaxOrderQty != 500 {
		t.Errorf("MaxOrderQty = %d, want 500", cfg.MaxOrderQty)
	}
	if cfg.DepthLevels != 25 {
		t.Errorf("DepthLevels = %d, want 25", cfg.DepthLevels)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "not-a-number"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad checkpoint interval", "CHECKPOINT_INTERVAL", "fast"},
		{"bad max qty", "MAX_ORDER_QTY", "lots"},
		{"zero max qty", "MAX_ORDER_QTY", "0"},
		{"negative max qty", "MAX_ORDER_QTY", "-5"},
		{"bad depth", "DEPTH_LEVELS", "deep"},
		{"zero depth", "DEPTH_LEVELS", "0"},
		{"bad read timeout", "READ_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
