package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"heartpanel/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig   `mapstructure:"data"`
	Cache    CacheConfig  `mapstructure:"cache"`
	Impute   ImputeConfig `mapstructure:"impute"`
	Server   ServerConfig `mapstructure:"server"`
	Store    StoreConfig  `mapstructure:"store"`
	LogLevel string       `mapstructure:"log_level"`
}

// DataConfig holds file locations for the pipeline and the query layer
type DataConfig struct {
	ManifestPath string `mapstructure:"manifest_path"`
	PanelPath    string `mapstructure:"panel_path"`
	ReportPath   string `mapstructure:"report_path"`
	Precision    int32  `mapstructure:"precision"`
	DefaultCause string `mapstructure:"default_cause"`
}

// CacheConfig sizes the two query caches
type CacheConfig struct {
	BaseTTL    time.Duration `mapstructure:"base_ttl"`
	BaseSize   int           `mapstructure:"base_size"`
	FilterTTL  time.Duration `mapstructure:"filter_ttl"`
	FilterSize int           `mapstructure:"filter_size"`
}

// ImputeConfig tunes the per-entity imputation engine
type ImputeConfig struct {
	Workers int `mapstructure:"workers"`
	Span    int `mapstructure:"span"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the optional SQL sink. Empty driver disables it.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// SQLEnabled reports whether a SQL store is configured
func (s StoreConfig) SQLEnabled() bool { return s.Driver != "" }

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.manifest_path", "data/sources.yaml")
	v.SetDefault("data.panel_path", "data/heart_disease_data.csv")
	v.SetDefault("data.report_path", "data/imputation_report.md")
	v.SetDefault("data.precision", 6)
	v.SetDefault("data.default_cause", "Cardiovascular diseases")

	v.SetDefault("cache.base_ttl", 30*time.Minute)
	v.SetDefault("cache.base_size", 4)
	v.SetDefault("cache.filter_ttl", 5*time.Minute)
	v.SetDefault("cache.filter_size", 256)

	v.SetDefault("impute.workers", 8)
	v.SetDefault("impute.span", 3)

	v.SetDefault("server.port", "8050")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8050", "http://localhost:5173"})

	v.SetDefault("store.driver", "")
	v.SetDefault("store.dsn", "")

	v.SetDefault("log_level", "INFO")
}

// Load reads configuration from defaults, an optional YAML file and HEARTPANEL_* env vars.
// A .env file in the working directory is loaded first when present.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HEARTPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "read config %s", cfgFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Data.PanelPath == "" && !c.Store.SQLEnabled() {
		return errors.ConfigInvalid("data.panel_path is required when no SQL store is configured")
	}
	if c.Cache.BaseTTL <= 0 || c.Cache.FilterTTL <= 0 {
		return errors.ConfigInvalid("cache TTLs must be positive")
	}
	if c.Cache.BaseSize <= 0 || c.Cache.FilterSize <= 0 {
		return errors.ConfigInvalid("cache sizes must be positive")
	}
	if c.Impute.Workers <= 0 {
		return errors.ConfigInvalid("impute.workers must be positive")
	}
	if c.Impute.Span < 1 {
		return errors.ConfigInvalid("impute.span must be at least 1")
	}
	if c.Store.SQLEnabled() && c.Store.DSN == "" {
		return errors.ConfigInvalid("store.dsn is required when store.driver is set")
	}
	switch c.Store.Driver {
	case "", "postgres", "sqlite3":
	default:
		return errors.ConfigInvalid("store.driver must be postgres or sqlite3")
	}
	return nil
}
