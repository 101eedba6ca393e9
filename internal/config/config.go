// Package config loads the securemail settings file with environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file consulted when no --config flag is given.
const DefaultPath = "securemail.yaml"

// ErrTemplateCreated is returned when the settings file was missing and a
// placeholder template has been written in its place. The caller is expected
// to tell the user to edit it and exit non-zero.
const ErrTemplateCreated = Error("settings template created")

// Error represents package level configuration errors.
type Error string

func (e Error) Error() string { return string(e) }

// template is the placeholder settings file written on first run.
const template = `sender_email: youremail@example.com
smtp:
  server: smtp.gmail.com
  port: 587
logging:
  level: info
`

// Config holds the complete application configuration.
type Config struct {
	SenderEmail string        `yaml:"sender_email"`
	SMTP        SMTPConfig    `yaml:"smtp"`
	Logging     LoggingConfig `yaml:"logging"`
}

// SMTPConfig holds the outbound SMTP server settings.
type SMTPConfig struct {
	Server string `yaml:"server"`
	Port   int    `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the settings file at path as the base layer, then overrides
// with environment variables. If the file does not exist, a placeholder
// template is written there and ErrTemplateCreated is returned. Missing
// required settings produce an error naming the setting.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if werr := os.WriteFile(path, []byte(template), 0o600); werr != nil {
			return nil, fmt.Errorf("failed to create settings template: %w", werr)
		}
		return nil, ErrTemplateCreated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	// Environment variables always override file values
	cfg.applyEnvVars()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required settings are present.
func (c *Config) validate() error {
	if c.SenderEmail == "" {
		return fmt.Errorf("missing required setting: sender_email")
	}
	if c.SMTP.Server == "" {
		return fmt.Errorf("missing required setting: smtp.server")
	}
	if c.SMTP.Port == 0 {
		return fmt.Errorf("missing required setting: smtp.port")
	}
	return nil
}

// applyDefaults sets default values for optional configuration fields.
func (c *Config) applyDefaults() {
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SENDER_EMAIL"); v != "" {
		c.SenderEmail = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		c.SMTP.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.SMTP.Port = port
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
