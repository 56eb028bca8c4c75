// package config holds the analyzer configuration. Values come from the
// environment (optionally seeded from a .env file) and may be overridden by a
// yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/open-sauced/pizza/analyzer/pkg/common"
	"github.com/open-sauced/pizza/analyzer/pkg/validator"
)

const (
	DefaultHost            = "localhost"
	DefaultPort            = 5050
	DefaultBaseURL         = "https://api.github.com/"
	DefaultUserAgent       = "GitHubRepoAnalyzer"
	DefaultCommitsPerPage  = 30
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the full set of recognized settings.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Token is the bearer credential sent to the GitHub API.
	Token string `yaml:"token"`

	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	CommitsPerPage int    `yaml:"commits_per_page"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		BaseURL:         DefaultBaseURL,
		UserAgent:       DefaultUserAgent,
		CommitsPerPage:  DefaultCommitsPerPage,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadDotEnv loads a .env file from the working directory into the
// environment. A missing file is reported but callers usually continue.
func LoadDotEnv(filenames ...string) error {
	return godotenv.Load(filenames...)
}

// Load builds the configuration from the environment and, when configPath is
// not empty, the yaml file at that path. The result is validated.
func Load(configPath string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv returns the defaults overridden by any set environment variable.
// Every variable that is set but cannot be parsed is reported.
func FromEnv() (*Config, error) {
	cfg := Default()
	v := validator.New()

	cfg.Host = getEnv("SERVER_HOST", cfg.Host)
	cfg.Port = getEnvAsInt(v, "SERVER_PORT", cfg.Port)
	cfg.ShutdownTimeout = getEnvAsDuration(v, "SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.Token = getEnv("GITHUB_TOKEN", cfg.Token)
	cfg.BaseURL = getEnv("GITHUB_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = getEnv("GITHUB_USER_AGENT", cfg.UserAgent)
	cfg.CommitsPerPage = getEnvAsInt(v, "GITHUB_COMMITS_PER_PAGE", cfg.CommitsPerPage)

	if !v.Valid() {
		return nil, fmt.Errorf("could not parse environment: %s", v.Error())
	}
	return cfg, nil
}

// ApplyFile overrides the configuration with every field set in the yaml file.
func (c *Config) ApplyFile(path string) error {
	configFile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read yaml configuration file: %w", err)
	}

	return c.ApplyYAML(configFile)
}

// ApplyYAML overrides the configuration with every field set in the document.
// Fields absent from the document keep their current value.
func (c *Config) ApplyYAML(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("could not unmarshal configuration file: %w", err)
	}
	return nil
}

// Validate checks every field and normalizes the base URL in place.
func (c *Config) Validate() error {
	v := validator.New()

	v.CheckConstraint(c.Port >= 1 && c.Port <= 65535, "port", fmt.Sprintf("invalid server port: %d", c.Port))
	v.CheckConstraint(c.UserAgent != "", "user_agent", "client identifier must not be empty")
	v.CheckConstraint(c.CommitsPerPage >= 0 && c.CommitsPerPage <= 100, "commits_per_page", "must be between 0 and 100")
	v.CheckConstraint(c.ShutdownTimeout > 0, "shutdown_timeout", "must be positive")

	normalized, err := common.NormalizeBaseURL(c.BaseURL)
	if err != nil {
		v.AddError("base_url", err.Error())
	} else {
		c.BaseURL = normalized
	}

	if !v.Valid() {
		return errors.New(v.Error())
	}
	return nil
}

// Address returns the server address in the format host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt records a parse failure under key in v and keeps the default.
func getEnvAsInt(v *validator.Validator, key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid integer %q", valueStr))
		return defaultValue
	}

	return value
}

func getEnvAsDuration(v *validator.Validator, key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid duration %q", valueStr))
		return defaultValue
	}

	return value
}
