package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/fieldobs-cli/internal/blobstore"
	"github.com/sells-group/fieldobs-cli/internal/fieldmeta"
)

// Store drivers.
const (
	DriverS3  = "s3"
	DriverDir = "dir"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// StoreConfig selects and configures the object store backend.
type StoreConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"`
	Dir                string `yaml:"dir" mapstructure:"dir"`
	blobstore.S3Config `yaml:",inline" mapstructure:",squash"`
}

// CatalogConfig names the shared GeoJSON documents.
type CatalogConfig struct {
	BlocksKey string `yaml:"blocks_key" mapstructure:"blocks_key"`
	SitesKey  string `yaml:"sites_key" mapstructure:"sites_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig controls the metrics dump written after each command.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FIELDOBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", DriverS3)
	v.SetDefault("store.endpoint", blobstore.DefaultEndpoint)
	v.SetDefault("store.bucket", blobstore.DefaultBucket)
	v.SetDefault("store.region", blobstore.DefaultRegion)
	v.SetDefault("store.dir", "")
	v.SetDefault("store.requests_per_second", 0)
	v.SetDefault("catalog.blocks_key", fieldmeta.DefaultBlocksKey)
	v.SetDefault("catalog.sites_key", fieldmeta.DefaultSitesKey)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var problems []string

	switch c.Store.Driver {
	case DriverS3:
		if c.Store.Endpoint == "" {
			problems = append(problems, "store.endpoint is required")
		}
		if c.Store.Bucket == "" {
			problems = append(problems, "store.bucket is required")
		}
	case DriverDir:
		if c.Store.Dir == "" {
			problems = append(problems, "store.dir is required for driver dir")
		}
	default:
		problems = append(problems, "store.driver must be s3 or dir, got "+c.Store.Driver)
	}
	if c.Store.RequestsPerSecond < 0 {
		problems = append(problems, "store.requests_per_second must be >= 0")
	}
	if c.Catalog.BlocksKey == "" {
		problems = append(problems, "catalog.blocks_key is required")
	}
	if c.Catalog.SitesKey == "" {
		problems = append(problems, "catalog.sites_key is required")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
