package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the venue.
type Config struct {
	Port               int
	LogLevel           string
	JournalDir         string
	CheckpointInterval time.Duration
	KafkaBrokers       []string // empty disables the trade feed
	KafkaTopic         string
	MaxOrderQty        int64
	DepthLevels        int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	journalDir := getStr("JOURNAL_DIR", "data/journal")

	checkpointInterval, err := getDuration("CHECKPOINT_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKPOINT_INTERVAL: %w", err)
	}

	kafkaTopic := getStr("KAFKA_TOPIC", "venue.trades")

	maxOrderQty, err := getInt64("MAX_ORDER_QTY", 1_000_000)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_ORDER_QTY: %w", err)
	}
	if maxOrderQty <= 0 {
		return nil, fmt.Errorf("invalid MAX_ORDER_QTY: must be positive")
	}

	depthLevels, err := getInt("DEPTH_LEVELS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS: %w", err)
	}
	if depthLevels <= 0 {
		return nil, fmt.Errorf("invalid DEPTH_LEVELS: must be positive")
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:               port,
		LogLevel:           logLevel,
		JournalDir:         journalDir,
		CheckpointInterval: checkpointInterval,
		KafkaBrokers:       getList("KAFKA_BROKERS"),
		KafkaTopic:         kafkaTopic,
		MaxOrderQty:        maxOrderQty,
		DepthLevels:        depthLevels,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		IdleTimeout:        idleTimeout,
		ShutdownTimeout:    shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getInt64(key string, defaultVal int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
