package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv           string
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	OpsAddr          string
	PromotionTTL     time.Duration
	ShutdownTimeout  time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "cart_pricing"),
		OpsAddr:          normalizeAddr(k.String("OPS_ADDR")),
		PromotionTTL:     parseDuration(k.String("PROMOTION_TTL"), "720h"),
		ShutdownTimeout:  parseDuration(k.String("SHUTDOWN_TIMEOUT"), "5s"),
	}
	if cfg.PromotionTTL <= 0 {
		return nil, fmt.Errorf("PROMOTION_TTL must be positive, got %s", cfg.PromotionTTL)
	}
	return cfg, nil
}

// OpsEnabled reports whether the health and metrics server should run.
func (c *Config) OpsEnabled() bool {
	return c.OpsAddr != ""
}

func normalizeAddr(value string) string {
	addr := strings.TrimSpace(value)
	if addr == "" || strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
