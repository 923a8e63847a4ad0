package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Forecast retrieval modes.
const (
	ForecastModeLastRun = "last_run"
	ForecastModeWindow  = "window"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	SensorThingsURL     string
	SensorThingsTimeout time.Duration
	SectionCacheTTL     time.Duration

	ForecastMode        string
	ForecastWindowStart time.Time
	ForecastWindowEnd   time.Time

	DefaultThresholds domain.Threshold
	PowerMeanExponent float64

	KafkaBrokers []string
	KafkaTopic   string

	ReportDistrict string
	ReportLanguage string
	RegionPosition domain.Position

	RunInterval     time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sensorTimeout, err := parsePositiveDuration("SENSORTHINGS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("SECTION_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}

	runInterval, err := time.ParseDuration(sharedcfg.EnvOrDefault("RUN_INTERVAL", "0s"))
	if err != nil || runInterval < 0 {
		return nil, errors.New("invalid RUN_INTERVAL")
	}

	thresholds, err := parseThresholds(sharedcfg.EnvOrDefault("DEFAULT_THRESHOLDS", "170,180,190"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_THRESHOLDS: %w", err)
	}

	exponent, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("POWER_MEAN_EXPONENT", "3"), 64)
	if err != nil || exponent <= 0 || math.IsInf(exponent, 0) || math.IsNaN(exponent) {
		return nil, errors.New("invalid POWER_MEAN_EXPONENT")
	}

	position, err := parsePosition(sharedcfg.EnvOrDefault("REGION_POSITION", "11.54679,45.55012"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGION_POSITION: %w", err)
	}

	cfg := &Config{
		SensorThingsURL:     sharedcfg.EnvOrDefault("SENSORTHINGS_URL", "https://beaware.server.de/SensorThingsService/v1.0/"),
		SensorThingsTimeout: sensorTimeout,
		SectionCacheTTL:     cacheTTL,
		ForecastMode:        sharedcfg.EnvOrDefault("FORECAST_MODE", ForecastModeLastRun),
		DefaultThresholds:   thresholds,
		PowerMeanExponent:   exponent,
		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          sharedcfg.EnvOrDefault("KAFKA_TOPIC", "TOP104_METRIC_REPORT"),
		ReportDistrict:      sharedcfg.EnvOrDefault("REPORT_DISTRICT", "Vicenza"),
		ReportLanguage:      sharedcfg.EnvOrDefault("REPORT_LANGUAGE", "it-IT"),
		RegionPosition:      position,
		RunInterval:         runInterval,
		HTTPAddr:            sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,
	}

	switch cfg.ForecastMode {
	case ForecastModeLastRun:
	case ForecastModeWindow:
		if err := cfg.loadWindow(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid FORECAST_MODE %q", cfg.ForecastMode)
	}

	if cfg.SensorThingsURL == "" {
		return nil, errors.New("SENSORTHINGS_URL is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

func (c *Config) loadWindow() error {
	start, err := time.Parse(time.RFC3339, sharedcfg.EnvOrDefault("FORECAST_WINDOW_START", ""))
	if err != nil {
		return errors.New("FORECAST_WINDOW_START must be RFC 3339 in window mode")
	}
	end, err := time.Parse(time.RFC3339, sharedcfg.EnvOrDefault("FORECAST_WINDOW_END", ""))
	if err != nil {
		return errors.New("FORECAST_WINDOW_END must be RFC 3339 in window mode")
	}
	if !end.After(start) {
		return errors.New("FORECAST_WINDOW_END must be after FORECAST_WINDOW_START")
	}
	c.ForecastWindowStart = start.UTC()
	c.ForecastWindowEnd = end.UTC()
	return nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseThresholds parses "t1,t2,t3".
func parseThresholds(s string) (domain.Threshold, error) {
	vals, err := parseFloats(s, 3)
	if err != nil {
		return domain.Threshold{}, err
	}
	th := domain.Threshold{T1: vals[0], T2: vals[1], T3: vals[2]}
	return th, th.Validate()
}

// parsePosition parses "lon,lat".
func parsePosition(s string) (domain.Position, error) {
	vals, err := parseFloats(s, 2)
	if err != nil {
		return domain.Position{}, err
	}
	return domain.Position{Lon: vals[0], Lat: vals[1]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
