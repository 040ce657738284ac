package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBroker = "broker1:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.HTTPAddr)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Production())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, DefaultOriginPattern, cfg.AllowedOrigins.String())
	assert.Equal(t, "./run.sh", cfg.EngineCommand)
	assert.Equal(t, ".", cfg.EngineWorkDir)
	assert.Zero(t, cfg.EngineTimeout)
	assert.Equal(t, "data/dem.tif", cfg.TerrainRaster)
	assert.Equal(t, "data/lahan.tif", cfg.LandUseRaster)
	assert.Equal(t, "result", cfg.TempOutputDir)
	assert.True(t, cfg.TempSweepEnabled)
	assert.Equal(t, "@every 15m", cfg.TempSweepSchedule)
	assert.Equal(t, time.Hour, cfg.TempMaxAge)
	assert.Equal(t, []string{"data", "result"}, cfg.StaticDirs)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.False(t, cfg.EventsEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "simulation-events", cfg.KafkaEventsTopic)
	assert.Equal(t, 5*time.Second, cfg.KafkaPublishTimeout)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGIN_PATTERN", `^https://app\.example\.com$`)
	t.Setenv("ENGINE_COMMAND", "/opt/flood/bin/simulate")
	t.Setenv("ENGINE_WORKDIR", "/srv/flood")
	t.Setenv("ENGINE_TIMEOUT", "30m")
	t.Setenv("TERRAIN_RASTER", "inputs/dem.tif")
	t.Setenv("LAND_USE_RASTER", "inputs/landuse.tif")
	t.Setenv("TEMP_OUTPUT_DIR", "scratch")
	t.Setenv("TEMP_SWEEP_SCHEDULE", "*/5 * * * *")
	t.Setenv("TEMP_MAX_AGE", "2h")
	t.Setenv("STATIC_DIRS", "data/, result , maps")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("KAFKA_BROKERS", testBroker+",broker2:9092")
	t.Setenv("KAFKA_EVENTS_TOPIC", "flood-events")
	t.Setenv("KAFKA_PUBLISH_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.True(t, cfg.Production())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.AllowedOrigins.MatchString("https://app.example.com"))
	assert.Equal(t, "/opt/flood/bin/simulate", cfg.EngineCommand)
	assert.Equal(t, "/srv/flood", cfg.EngineWorkDir)
	assert.Equal(t, 30*time.Minute, cfg.EngineTimeout)
	assert.Equal(t, "inputs/dem.tif", cfg.TerrainRaster)
	assert.Equal(t, "inputs/landuse.tif", cfg.LandUseRaster)
	assert.Equal(t, "scratch", cfg.TempOutputDir)
	assert.Equal(t, "*/5 * * * *", cfg.TempSweepSchedule)
	assert.Equal(t, 2*time.Hour, cfg.TempMaxAge)
	assert.Equal(t, []string{"data", "result", "maps"}, cfg.StaticDirs)
	assert.True(t, cfg.TrustProxyHeaders)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, []string{testBroker, "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "flood-events", cfg.KafkaEventsTopic)
	assert.Equal(t, 2*time.Second, cfg.KafkaPublishTimeout)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ENGINE_TIMEOUT", "soon"},
		{"ENGINE_TIMEOUT", "-1s"},
		{"TEMP_MAX_AGE", "0s"},
		{"TEMP_MAX_AGE", "bad"},
		{"KAFKA_PUBLISH_TIMEOUT", "-5s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidOriginPattern(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN_PATTERN", "([")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS_ALLOWED_ORIGIN_PATTERN")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_InvalidSweepSchedule(t *testing.T) {
	t.Setenv("TEMP_SWEEP_SCHEDULE", "whenever")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEMP_SWEEP_SCHEDULE")
}

func TestLoad_SweepDisabledSkipsScheduleCheck(t *testing.T) {
	t.Setenv("TEMP_SWEEP_ENABLED", "false")
	t.Setenv("TEMP_SWEEP_SCHEDULE", "whenever")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.TempSweepEnabled)
}

func TestLoad_StaticDirsOutsideWorkDir(t *testing.T) {
	for _, v := range []string{"../etc", "/var/www"} {
		t.Setenv("STATIC_DIRS", v)
		_, err := Load()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "STATIC_DIRS")
	}
}

func TestLoad_TempOutputDir(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"result/", "result"},
		{"./scratch/tmp", "scratch/tmp"},
		{"/var/tmp/flood/", "/var/tmp/flood"},
	}
	for _, tt := range tests {
		t.Setenv("TEMP_OUTPUT_DIR", tt.value)
		cfg, err := Load()
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, cfg.TempOutputDir)
	}
}

func TestLoad_EventsEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_EventsExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", testBroker)
	t.Setenv("EVENTS_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, []string{testBroker}, cfg.KafkaBrokers)
}
