package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Search     SearchConfig     `yaml:"search"`
	Server     ServerConfig     `yaml:"server"`
	Auth       AuthConfig       `yaml:"auth"`
	Moderation ModerationConfig `yaml:"moderation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	APIKey  string `yaml:"api_key"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig contains session verification settings
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	TokenHourLifespan int    `yaml:"token_hour_lifespan"`
}

// ModerationConfig contains review pipeline settings
type ModerationConfig struct {
	ReminderEnabled bool   `yaml:"reminder_enabled"`
	ReminderTime    string `yaml:"reminder_time"` // HH:MM, daily stale-pending sweep
}

// RateLimitConfig contains report-intake throttle settings
type RateLimitConfig struct {
	Enabled          bool `yaml:"enabled"`
	ReportsPerMinute int  `yaml:"reports_per_minute"`
	ReportsPerHour   int  `yaml:"reports_per_hour"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Enabled: true,
			},
		},
		Server: ServerConfig{
			Port:           "8084",
			AllowedOrigins: []string{"http://localhost:5176"},
		},
		Auth: AuthConfig{
			TokenHourLifespan: 24,
		},
		Moderation: ModerationConfig{
			ReminderEnabled: true,
			ReminderTime:    "08:00",
		},
		RateLimit: RateLimitConfig{
			Enabled:          true,
			ReportsPerMinute: 5,
			ReportsPerHour:   60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
