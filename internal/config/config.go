package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port               int      `mapstructure:"port"`
	DatabasePath       string   `mapstructure:"database_path"`
	LogLevel           string   `mapstructure:"log_level"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
	RequestTimeoutSec  int      `mapstructure:"request_timeout_sec"`  // HTTP read/write; 0 = server default
	ShutdownTimeoutSec int      `mapstructure:"shutdown_timeout_sec"` // Graceful shutdown wait

	// Admin API auth. Tokens are issued by the external identity provider;
	// this backend only validates them.
	AuthJWTSecret string `mapstructure:"auth_jwt_secret"`
	AuthMode      string `mapstructure:"auth_mode"` // disabled | required

	// Directory ("Overlord") service.
	DirectoryBaseURL    string `mapstructure:"directory_base_url"`
	DirectoryTimeoutSec int    `mapstructure:"directory_timeout_sec"` // Outbound directory call budget

	// Identity provider used to obtain outbound directory tokens
	// (client-credentials grant).
	IdPTokenURL     string `mapstructure:"idp_token_url"`
	IdPClientID     string `mapstructure:"idp_client_id"`
	IdPClientSecret string `mapstructure:"idp_client_secret"`
	IdPAudience     string `mapstructure:"idp_audience"`

	// VPS monitor API.
	MonitorBaseURL       string `mapstructure:"monitor_base_url"`
	MonitorAPIKey        string `mapstructure:"monitor_api_key"` // Basic authorization value
	MonitorTimeoutSec    int    `mapstructure:"monitor_timeout_sec"`
	MonitorHistoryTTLSec int    `mapstructure:"monitor_history_ttl_sec"` // History cache TTL; 0 = cache disabled

	// Public lead capture.
	LeadRatePerMin   float64 `mapstructure:"lead_rate_per_min"`   // Token bucket rate per remote IP; 0 = no limit
	LeadRateBurst    int     `mapstructure:"lead_rate_burst"`     // Token bucket burst per remote IP
	LeadMaxBodyBytes int     `mapstructure:"lead_max_body_bytes"` // Max body size for POST /leads; 0 = default 64KB
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/orivyx/")
	viper.AddConfigPath("$HOME/.orivyx")
	viper.AddConfigPath(".")

	// Defaults
	viper.SetDefault("port", 8080)
	viper.SetDefault("database_path", "./orivyx.db")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("request_timeout_sec", 30)
	viper.SetDefault("shutdown_timeout_sec", 15)
	viper.SetDefault("auth_mode", "required")
	viper.SetDefault("directory_base_url", "http://localhost:3000")
	viper.SetDefault("directory_timeout_sec", 15)
	viper.SetDefault("monitor_timeout_sec", 10)
	viper.SetDefault("monitor_history_ttl_sec", 300) // dashboard refreshes history every 5 minutes
	viper.SetDefault("lead_rate_per_min", 6)
	viper.SetDefault("lead_rate_burst", 3)
	viper.SetDefault("lead_max_body_bytes", 64*1024)

	// Environment variables
	viper.SetEnvPrefix("ORIVYX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; using defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.LeadMaxBodyBytes <= 0 {
		cfg.LeadMaxBodyBytes = 64 * 1024
	}

	return &cfg, nil
}
