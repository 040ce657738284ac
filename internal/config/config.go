package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// DefaultOriginPattern allows any subdomain of prodev.media over http or https.
const DefaultOriginPattern = `^https?://([a-zA-Z0-9-]+\.)*prodev\.media$`

// Config holds all service settings, populated once from environment variables.
type Config struct {
	HTTPAddr        string
	Environment     string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Origin policy, enforced only in production.
	AllowedOrigins *regexp.Regexp

	// Engine invocation.
	EngineCommand string
	EngineWorkDir string
	EngineTimeout time.Duration // zero means the engine may run indefinitely
	TerrainRaster string
	LandUseRaster string

	// Temporary output rasters.
	TempOutputDir     string
	TempSweepEnabled  bool
	TempSweepSchedule string
	TempMaxAge        time.Duration

	StaticDirs        []string
	TrustProxyHeaders bool

	// Outcome events.
	EventsEnabled       bool
	KafkaBrokers        []string
	KafkaEventsTopic    string
	KafkaPublishTimeout time.Duration
}

// Production reports whether the service runs with production policies.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; real environment variables take precedence

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	engineTimeout, err := parseDuration("ENGINE_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}
	tempMaxAge, err := parseDuration("TEMP_MAX_AGE", "1h", false)
	if err != nil {
		return nil, err
	}
	publishTimeout, err := parseDuration("KAFKA_PUBLISH_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	origins, err := regexp.Compile(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGIN_PATTERN", DefaultOriginPattern))
	if err != nil {
		return nil, fmt.Errorf("invalid CORS_ALLOWED_ORIGIN_PATTERN: %w", err)
	}

	brokers := splitList(os.Getenv("KAFKA_BROKERS"))
	eventsEnabled := len(brokers) > 0
	if v := os.Getenv("EVENTS_ENABLED"); v != "" {
		eventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":4000"),
		Environment:     sharedcfg.EnvOrDefault("APP_ENV", "development"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		AllowedOrigins: origins,

		EngineCommand: sharedcfg.EnvOrDefault("ENGINE_COMMAND", "./run.sh"),
		EngineWorkDir: sharedcfg.EnvOrDefault("ENGINE_WORKDIR", "."),
		EngineTimeout: engineTimeout,
		TerrainRaster: sharedcfg.EnvOrDefault("TERRAIN_RASTER", "data/dem.tif"),
		LandUseRaster: sharedcfg.EnvOrDefault("LAND_USE_RASTER", "data/lahan.tif"),

		TempOutputDir:     sharedcfg.EnvOrDefault("TEMP_OUTPUT_DIR", "result"),
		TempSweepEnabled:  sharedcfg.EnvOrDefault("TEMP_SWEEP_ENABLED", "true") == "true",
		TempSweepSchedule: sharedcfg.EnvOrDefault("TEMP_SWEEP_SCHEDULE", "@every 15m"),
		TempMaxAge:        tempMaxAge,

		StaticDirs:        splitList(sharedcfg.EnvOrDefault("STATIC_DIRS", "data,result")),
		TrustProxyHeaders: os.Getenv("TRUST_PROXY_HEADERS") == "true",

		EventsEnabled:       eventsEnabled,
		KafkaBrokers:        brokers,
		KafkaEventsTopic:    sharedcfg.EnvOrDefault("KAFKA_EVENTS_TOPIC", "simulation-events"),
		KafkaPublishTimeout: publishTimeout,
	}

	if cfg.EngineCommand == "" {
		return nil, errors.New("ENGINE_COMMAND is required")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if cfg.TempSweepEnabled {
		if _, err := cron.ParseStandard(cfg.TempSweepSchedule); err != nil {
			return nil, fmt.Errorf("invalid TEMP_SWEEP_SCHEDULE: %w", err)
		}
	}
	cfg.TempOutputDir = path.Clean(cfg.TempOutputDir)
	for i, dir := range cfg.StaticDirs {
		if strings.Contains(dir, "..") || strings.HasPrefix(dir, "/") {
			return nil, fmt.Errorf("STATIC_DIRS entry %q must be a relative path inside ENGINE_WORKDIR", dir)
		}
		cfg.StaticDirs[i] = strings.TrimSuffix(dir, "/")
	}
	if cfg.EventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}

	return cfg, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
