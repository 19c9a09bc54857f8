package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/radar-vs-measurement/internal/weather"
	"github.com/i474232898/radar-vs-measurement/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level
	Port     string `validate:"required,numeric"`

	// MDX Meteotest API. APIKey has no default and must be supplied.
	APIURL            string `validate:"required,url"`
	APIKey            string `validate:"required"`
	Service           string `validate:"required"`
	Format            string `validate:"required"`
	MeasurementAction string `validate:"required"`
	RadarAction       string `validate:"required"`

	// Where each series lives inside its payload.
	Sources weather.Sources

	// RadarCorrection multiplies the radar series. Provisional unit fix.
	RadarCorrection float64 `validate:"gt=0"`
	TiePolicy       weather.TiePolicy

	HTTPTimeout time.Duration `validate:"gt=0"`

	// ReportInterval controls how often a comparison report is produced
	// (0 disables the scheduler).
	ReportInterval time.Duration `validate:"gte=0"`

	// In-memory report retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of reports (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of reports (0 = unlimited)
}

// fileConfig is the layout of the optional YAML file named by SOURCES_FILE.
// Environment variables take precedence over it.
type fileConfig struct {
	APIURL          string   `yaml:"api_url"`
	APIKey          string   `yaml:"api_key"`
	Service         string   `yaml:"service"`
	Format          string   `yaml:"format"`
	RadarCorrection *float64 `yaml:"radar_correction"`
	TiePolicy       string   `yaml:"tie_policy"`

	Measurement sourceConfig `yaml:"measurement"`
	Radar       sourceConfig `yaml:"radar"`
}

type sourceConfig struct {
	Action   string `yaml:"action"`
	Provider string `yaml:"provider"`
	Station  string `yaml:"station"`
	Field    string `yaml:"field"`
}

// Load reads configuration from an optional .env file, an optional YAML
// sources file and the environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("SOURCES_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *AppConfig {
	return &AppConfig{
		AppEnv:            "dev",
		LogLevel:          slog.LevelInfo,
		Port:              "8080",
		APIURL:            providers.DefaultMeteotestURL,
		Service:           providers.DefaultMeteotestService,
		Format:            providers.DefaultMeteotestFormat,
		MeasurementAction: providers.DefaultMeasurementAction,
		RadarAction:       providers.DefaultRadarAction,
		Sources:           weather.DefaultSources(),
		RadarCorrection:   weather.DefaultRadarCorrection,
		TiePolicy:         weather.TieMeasurementAxis,
		HTTPTimeout:       15 * time.Second,
		ReportInterval:    0,
		StoreMaxHistory:   96, // roughly 24h at 15-minute intervals
		StoreMaxAge:       24 * time.Hour,
	}
}

func (cfg *AppConfig) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading sources file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("error parsing sources file %s: %w", path, err)
	}

	setIfNotEmpty(&cfg.APIURL, fc.APIURL)
	setIfNotEmpty(&cfg.APIKey, fc.APIKey)
	setIfNotEmpty(&cfg.Service, fc.Service)
	setIfNotEmpty(&cfg.Format, fc.Format)
	setIfNotEmpty(&cfg.MeasurementAction, fc.Measurement.Action)
	setIfNotEmpty(&cfg.RadarAction, fc.Radar.Action)
	fc.Measurement.applyTo(&cfg.Sources.Measurement)
	fc.Radar.applyTo(&cfg.Sources.Radar)

	if fc.RadarCorrection != nil {
		cfg.RadarCorrection = *fc.RadarCorrection
	}
	if fc.TiePolicy != "" {
		p, err := weather.ParseTiePolicy(fc.TiePolicy)
		if err != nil {
			return fmt.Errorf("sources file: %w", err)
		}
		cfg.TiePolicy = p
	}
	return nil
}

func (s sourceConfig) applyTo(p *weather.SourcePath) {
	setIfNotEmpty(&p.Provider, s.Provider)
	setIfNotEmpty(&p.Station, s.Station)
	setIfNotEmpty(&p.Field, s.Field)
}

func (cfg *AppConfig) applyEnv() error {
	cfg.AppEnv = getenvDefault("APP_ENV", cfg.AppEnv)
	cfg.Port = getenvDefault("PORT", cfg.Port)

	if v := getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	cfg.APIURL = getenvDefault("MDX_API_URL", cfg.APIURL)
	cfg.APIKey = getenvDefault("MDX_API_KEY", cfg.APIKey)
	cfg.Service = getenvDefault("MDX_SERVICE", cfg.Service)
	cfg.Format = getenvDefault("MDX_FORMAT", cfg.Format)
	cfg.MeasurementAction = getenvDefault("MEASUREMENT_ACTION", cfg.MeasurementAction)
	cfg.RadarAction = getenvDefault("RADAR_ACTION", cfg.RadarAction)

	if v := getenv("RADAR_CORRECTION_FACTOR"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RADAR_CORRECTION_FACTOR: %w", err)
		}
		cfg.RadarCorrection = f
	}

	if v := getenv("TIE_POLICY"); v != "" {
		p, err := weather.ParseTiePolicy(v)
		if err != nil {
			return fmt.Errorf("invalid TIE_POLICY: %w", err)
		}
		cfg.TiePolicy = p
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.ReportInterval, err = getenvDuration("REPORT_INTERVAL", cfg.ReportInterval); err != nil {
		return err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", cfg.StoreMaxAge); err != nil {
		return err
	}
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)

	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
