package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIBaseURL         string        `mapstructure:"webui_api_base_url"`
	APIToken           string        `mapstructure:"webui_api_token"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	DownloadDir        string        `mapstructure:"download_dir"`
	PlansFile          string        `mapstructure:"plans_file"`

	PublishersFile       string        `mapstructure:"publishers_file"`
	WatchIntervalSeconds int64         `mapstructure:"watch_interval"`
	WatchInterval        time.Duration `mapstructure:"-"`
	WatchMaxPages        int           `mapstructure:"watch_max_pages"`
	WatchPageSize        int           `mapstructure:"watch_page_size"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "samvad-webui-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("webui_api_base_url", "http://localhost:8080/api/v1")
	v.SetDefault("webui_api_token", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("download_dir", "./downloads")
	v.SetDefault("plans_file", "")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("watch_interval", 60) // seconds
	v.SetDefault("watch_max_pages", 5)
	v.SetDefault("watch_page_size", 50)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/ledger.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if u, err := url.Parse(cfg.APIBaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid webui_api_base_url %q (must be an absolute url)", cfg.APIBaseURL)
	}
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.WatchIntervalSeconds <= 0 {
		return fmt.Errorf("invalid watch_interval (must be positive seconds)")
	}
	cfg.WatchInterval = time.Duration(cfg.WatchIntervalSeconds) * time.Second
	if cfg.WatchMaxPages <= 0 {
		return fmt.Errorf("invalid watch_max_pages (must be positive)")
	}
	if cfg.WatchPageSize <= 0 {
		return fmt.Errorf("invalid watch_page_size (must be positive)")
	}

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.APIToken != "" {
		cfg.APIToken = "***"
	}
	return cfg
}
