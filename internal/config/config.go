package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config maps the whole application configuration. Collaborator settings
// (geo database path, summarizer endpoint) live here and are injected into
// constructors at assembly time; core logic never reads process state.
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"` // base for public redirect URLs encoded into QR images
	} `mapstructure:"server"`

	Database struct {
		Name string `mapstructure:"name"` // SQLite database file
	} `mapstructure:"database"`

	// Analytics drives the async visit pipeline.
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // visit event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // goroutines persisting visits
	} `mapstructure:"analytics"`

	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // target URL health check interval
	} `mapstructure:"monitor"`

	GeoIP struct {
		DBPath string `mapstructure:"db_path"` // GeoLite2 City database; empty disables geo lookup
	} `mapstructure:"geoip"`

	Summary struct {
		Endpoint       string `mapstructure:"endpoint"` // summarizer HTTP endpoint; empty uses the local summarizer
		APIKey         string `mapstructure:"api_key"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"summary"`
}

// LoadConfig loads the configuration via Viper: ./configs/config.yaml with
// env-var overrides (dots become underscores) and defaults for every key.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.name", "qrlink.db")
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)
	viper.SetDefault("geoip.db_path", "")
	viper.SetDefault("summary.endpoint", "")
	viper.SetDefault("summary.api_key", "")
	viper.SetDefault("summary.timeout_seconds", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Info("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	logrus.Infof("Configuration loaded: Server Port=%d, DB Name=%s, Analytics Buffer=%d, Monitor Interval=%dmin",
		cfg.Server.Port, cfg.Database.Name, cfg.Analytics.BufferSize, cfg.Monitor.IntervalMinutes)

	return &cfg, nil
}
