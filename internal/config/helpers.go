package config

import (
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// envOr parses the variable named key with parse. Unset, empty and
// unparsable values all yield fallback.
func envOr[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func getEnv(key, fallback string) string {
	return envOr(key, fallback, func(s string) (string, error) { return s, nil })
}

func getInt(key string, fallback int) int {
	return envOr(key, fallback, strconv.Atoi)
}

func getInt64(key string, fallback int64) int64 {
	return envOr(key, fallback, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

func getBool(key string, fallback bool) bool {
	return envOr(key, fallback, strconv.ParseBool)
}

func getDuration(key string, fallback time.Duration) time.Duration {
	return envOr(key, fallback, time.ParseDuration)
}

// listenAddr resolves the server address. HTTP_ADDR wins over PORT.
func listenAddr() string {
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		return addr
	}
	return ":" + getEnv("PORT", defaultPort)
}

func (c *Config) environmentIs(names ...string) bool {
	return slices.Contains(names, strings.ToLower(c.Environment))
}

func (c *Config) IsLocal() bool {
	return c.environmentIs("local", "development", "dev")
}

func (c *Config) IsProduction() bool {
	return c.environmentIs("production", "prod")
}

func (c *Config) IsTest() bool {
	return c.environmentIs("test", "testing")
}

// IsLambda reports whether the process runs inside AWS Lambda.
func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" ||
		os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}
