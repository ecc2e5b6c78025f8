package utils

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt は整数の環境変数を読み取ります。不正な値の場合はデフォルト値を返します。
func GetEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid int env, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return v
}

// GetEnvDuration は "30s" 形式の環境変数を読み取ります。
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration env, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return v
}

// GetEnvLevel は LOG_LEVEL 形式 (debug/info/warn/error) の環境変数を読み取ります。
func GetEnvLevel(key string, defaultValue slog.Level) slog.Level {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		slog.Warn("invalid log level env, using default", "key", key, "value", raw)
		return defaultValue
	}
	return level
}
