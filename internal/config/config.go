package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir    string
	Port         string
	MetricsPort  string
	FetchTimeout time.Duration
	SessionTTL   time.Duration
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		OutputDir:    getEnv("OUTPUT_DIR", filepath.Join(os.TempDir(), "reviewpulse")),
		Port:         getEnv("PORT", "8080"),
		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		FetchTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 20)) * time.Second,
		SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return d
}
