package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvLoader struct {
	prefix string
}

func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix}
}

// GetString retrieves a string value from environment variable
// Returns defaultValue if not found
func (e *EnvLoader) GetString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(e.buildKey(key))); value != "" {
		return value
	}
	return defaultValue
}

// GetStringRequired retrieves a required string value from environment variable
func (e *EnvLoader) GetStringRequired(key string) (string, error) {
	envKey := e.buildKey(key)
	value := strings.TrimSpace(os.Getenv(envKey))
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", envKey)
	}
	return value, nil
}

// GetSeries collects a numbered family of variables: first, then
// format%d for 2..max. Unset and duplicate values are skipped, order is kept.
func (e *EnvLoader) GetSeries(first, format string, max int) []string {
	values := make([]string, 0, max)
	seen := make(map[string]struct{}, max)

	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}

	add(e.GetString(first, ""))
	for i := 2; i <= max; i++ {
		add(e.GetString(fmt.Sprintf(format, i), ""))
	}

	return values
}

// GetInt retrieves an integer value from environment variable
// Returns defaultValue if not found or invalid
func (e *EnvLoader) GetInt(key string, defaultValue int) int {
	value := os.Getenv(e.buildKey(key))
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// GetBool accepts "true", "1", "yes", "on" and "false", "0", "no", "off"
func (e *EnvLoader) GetBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(e.buildKey(key))) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func (e *EnvLoader) GetDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.ToLower(os.Getenv(e.buildKey(key)))
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// buildKey constructs the full environment variable key with prefix
// Example: prefix="BASECOUNTER", key="REDIS_ADDRESS" -> "BASECOUNTER_REDIS_ADDRESS"
func (e *EnvLoader) buildKey(key string) string {
	if e.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", e.prefix, key)
}
