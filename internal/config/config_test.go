package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/flood-crcl-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://beaware.server.de/SensorThingsService/v1.0/", cfg.SensorThingsURL)
	assert.Equal(t, 10*time.Second, cfg.SensorThingsTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SectionCacheTTL)
	assert.Equal(t, ForecastModeLastRun, cfg.ForecastMode)
	assert.True(t, cfg.ForecastWindowStart.IsZero())
	assert.Equal(t, domain.Threshold{T1: 170, T2: 180, T3: 190}, cfg.DefaultThresholds)
	assert.Equal(t, 3.0, cfg.PowerMeanExponent)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "TOP104_METRIC_REPORT", cfg.KafkaTopic)
	assert.Equal(t, "Vicenza", cfg.ReportDistrict)
	assert.Equal(t, "it-IT", cfg.ReportLanguage)
	assert.Equal(t, domain.Position{Lon: 11.54679, Lat: 45.55012}, cfg.RegionPosition)
	assert.Zero(t, cfg.RunInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SENSORTHINGS_URL", "http://sta.local/v1.0/")
	t.Setenv("SENSORTHINGS_TIMEOUT", "3s")
	t.Setenv("SECTION_CACHE_TTL", "1h")
	t.Setenv("FORECAST_MODE", "window")
	t.Setenv("FORECAST_WINDOW_START", "2018-01-26T08:00:00Z")
	t.Setenv("FORECAST_WINDOW_END", "2018-01-28T14:00:00Z")
	t.Setenv("DEFAULT_THRESHOLDS", "1.5, 2.5, 3.5")
	t.Setenv("POWER_MEAN_EXPONENT", "2")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-reports")
	t.Setenv("REPORT_DISTRICT", "Padova")
	t.Setenv("REPORT_LANGUAGE", "en-GB")
	t.Setenv("REGION_POSITION", "11.87,45.40")
	t.Setenv("RUN_INTERVAL", "15m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://sta.local/v1.0/", cfg.SensorThingsURL)
	assert.Equal(t, 3*time.Second, cfg.SensorThingsTimeout)
	assert.Equal(t, time.Hour, cfg.SectionCacheTTL)
	assert.Equal(t, ForecastModeWindow, cfg.ForecastMode)
	assert.Equal(t, time.Date(2018, 1, 26, 8, 0, 0, 0, time.UTC), cfg.ForecastWindowStart)
	assert.Equal(t, time.Date(2018, 1, 28, 14, 0, 0, 0, time.UTC), cfg.ForecastWindowEnd)
	assert.Equal(t, domain.Threshold{T1: 1.5, T2: 2.5, T3: 3.5}, cfg.DefaultThresholds)
	assert.Equal(t, 2.0, cfg.PowerMeanExponent)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaTopic)
	assert.Equal(t, "Padova", cfg.ReportDistrict)
	assert.Equal(t, "en-GB", cfg.ReportLanguage)
	assert.Equal(t, domain.Position{Lon: 11.87, Lat: 45.40}, cfg.RegionPosition)
	assert.Equal(t, 15*time.Minute, cfg.RunInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SENSORTHINGS_TIMEOUT", "bad", "SENSORTHINGS_TIMEOUT"},
		{"SENSORTHINGS_TIMEOUT", "-1s", "SENSORTHINGS_TIMEOUT"},
		{"SECTION_CACHE_TTL", "0s", "SECTION_CACHE_TTL"},
		{"RUN_INTERVAL", "-5m", "RUN_INTERVAL"},
		{"DEFAULT_THRESHOLDS", "170,180", "DEFAULT_THRESHOLDS"},
		{"DEFAULT_THRESHOLDS", "190,180,170", "DEFAULT_THRESHOLDS"},
		{"DEFAULT_THRESHOLDS", "a,b,c", "DEFAULT_THRESHOLDS"},
		{"POWER_MEAN_EXPONENT", "0", "POWER_MEAN_EXPONENT"},
		{"POWER_MEAN_EXPONENT", "cubic", "POWER_MEAN_EXPONENT"},
		{"REGION_POSITION", "11.5", "REGION_POSITION"},
		{"FORECAST_MODE", "yesterday", "FORECAST_MODE"},
		{"FORECAST_MODE", "window", "FORECAST_WINDOW_START"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_WindowEndBeforeStart(t *testing.T) {
	t.Setenv("FORECAST_MODE", "window")
	t.Setenv("FORECAST_WINDOW_START", "2018-01-28T14:00:00Z")
	t.Setenv("FORECAST_WINDOW_END", "2018-01-26T08:00:00Z")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_WINDOW_END")
}
