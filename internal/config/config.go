// Package config loads application configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Match   MatchConfig   `yaml:"match" mapstructure:"match"`
	Nearest NearestConfig `yaml:"nearest" mapstructure:"nearest"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// MatchConfig holds engine defaults applied when a match spec leaves the
// corresponding knob unset.
type MatchConfig struct {
	Workers      int     `yaml:"workers" mapstructure:"workers"`
	MemoryPct    float64 `yaml:"memory_pct" mapstructure:"memory_pct"`
	ProgressSecs int     `yaml:"progress_secs" mapstructure:"progress_secs"`
	StrThreshold float64 `yaml:"str_threshold" mapstructure:"str_threshold"`
	NumThreshold float64 `yaml:"num_threshold" mapstructure:"num_threshold"`
	Weight       float64 `yaml:"weight" mapstructure:"weight"`
}

// NearestConfig holds defaults for the geographic crosswalk.
type NearestConfig struct {
	Matches   int `yaml:"matches" mapstructure:"matches"`
	ChunkSize int `yaml:"chunk_size" mapstructure:"chunk_size"`
	Workers   int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port          int      `yaml:"port" mapstructure:"port"`
	AllowOrigins  []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	MaxUploadMB   int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	RatePerSecond float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	RateBurst     int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FUZZYMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("match.workers", 0)
	v.SetDefault("match.memory_pct", 98)
	v.SetDefault("match.progress_secs", 1)
	v.SetDefault("match.str_threshold", 0.9)
	v.SetDefault("match.num_threshold", 1)
	v.SetDefault("match.weight", 1)
	v.SetDefault("nearest.matches", 10)
	v.SetDefault("nearest.chunk_size", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 200)
	v.SetDefault("server.rate_per_second", 2)
	v.SetDefault("server.rate_burst", 5)

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
