package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"csvdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Mail      MailConfig
	Data      DataConfig
	Stub      StubConfig
	Profiling ProfilingConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// Generator modes for MailConfig.Generator
const (
	GeneratorRemote = "remote"
	GeneratorLocal  = "local"
)

// MailConfig holds settings for the email generation and sending endpoints
type MailConfig struct {
	BaseURL         string
	Subject         string
	Timeout         time.Duration
	Concurrency     int
	Generator       string
	RecipientColumn string
}

// DataConfig holds upload settings
type DataConfig struct {
	MaxUploadBytes int64
}

// StubConfig holds settings for the local mail endpoint stub
type StubConfig struct {
	Port string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Mail:      *loadMailConfig(),
		Data:      *loadDataConfig(),
		Stub:      *loadStubConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadMailConfig() *MailConfig {
	return &MailConfig{
		BaseURL:         getEnvOrDefault("MAIL_BASE_URL", "http://127.0.0.1:5000"),
		Subject:         getEnvOrDefault("MAIL_SUBJECT", "Your Custom Subject"),
		Timeout:         getEnvDurationOrDefault("MAIL_TIMEOUT", 30*time.Second),
		Concurrency:     getEnvIntOrDefault("MAIL_CONCURRENCY", 1),
		Generator:       strings.ToLower(getEnvOrDefault("MAIL_GENERATOR", GeneratorRemote)),
		RecipientColumn: getEnvOrDefault("RECIPIENT_COLUMN", "Email"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)) << 20,
	}
}

func loadStubConfig() *StubConfig {
	return &StubConfig{
		Port: getEnvOrDefault("MAILSTUB_PORT", "5000"),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if u, err := url.Parse(config.Mail.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("MAIL_BASE_URL must be an absolute URL")
	}
	if config.Mail.Concurrency < 1 {
		return errors.ConfigInvalid("MAIL_CONCURRENCY must be at least 1")
	}
	if config.Mail.Generator != GeneratorRemote && config.Mail.Generator != GeneratorLocal {
		return errors.ConfigInvalid("MAIL_GENERATOR must be remote or local")
	}
	if config.Mail.RecipientColumn == "" {
		return errors.ConfigInvalid("RECIPIENT_COLUMN is required")
	}
	if config.Data.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
