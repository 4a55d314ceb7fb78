package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        int
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	LookbackDays          int
	TargetMarginPercent   float64
	TargetDailySales      float64
	KitchenSetupMinutes   int
	KitchenPerUnitMinutes int
}

func Load() (Config, error) {
	return LoadFrom(filepath.Join(".", ".env"))
}

// LoadFrom reads configuration from the environment, falling back to the
// given .env file. A missing file is not an error.
func LoadFrom(envPath string) (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := godotenv.Read(envPath)
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", envPath, err)
		}
		values = fileValues
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}

	lookup := func(key string) string {
		return firstNonEmpty(os.Getenv(key), values[key])
	}

	cfg := Config{
		Port:                  8080,
		LogLevel:              "info",
		LogFormat:             "json",
		LookbackDays:          30,
		TargetMarginPercent:   30,
		TargetDailySales:      5,
		KitchenSetupMinutes:   5,
		KitchenPerUnitMinutes: 2,
	}

	var err error
	if cfg.Port, err = positiveInt(lookup, "PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.LookbackDays, err = positiveInt(lookup, "FORECAST_LOOKBACK_DAYS", cfg.LookbackDays); err != nil {
		return Config{}, err
	}
	if cfg.KitchenSetupMinutes, err = positiveInt(lookup, "KITCHEN_SETUP_MINUTES", cfg.KitchenSetupMinutes); err != nil {
		return Config{}, err
	}
	if cfg.KitchenPerUnitMinutes, err = positiveInt(lookup, "KITCHEN_PER_UNIT_MINUTES", cfg.KitchenPerUnitMinutes); err != nil {
		return Config{}, err
	}
	if cfg.TargetMarginPercent, err = positiveFloat(lookup, "HEALTH_TARGET_MARGIN", cfg.TargetMarginPercent); err != nil {
		return Config{}, err
	}
	if cfg.TargetDailySales, err = positiveFloat(lookup, "HEALTH_TARGET_DAILY_SALES", cfg.TargetDailySales); err != nil {
		return Config{}, err
	}

	if level := strings.ToLower(lookup("LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %q", level)
		}
	}
	if format := strings.ToLower(lookup("LOG_FORMAT")); format != "" {
		if format != "json" && format != "console" {
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: %q", format)
		}
		cfg.LogFormat = format
	}

	cfg.DatabaseURL = lookup("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	return cfg, nil
}

func positiveInt(lookup func(string) string, key string, fallback int) (int, error) {
	raw := lookup(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return value, nil
}

func positiveFloat(lookup func(string) string, key string, fallback float64) (float64, error) {
	raw := lookup(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return value, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}
