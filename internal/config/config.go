// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	FrontendURL     string
	DBPath          string
	SecretName      string
	SessionDuration time.Duration
	Alert           AlertConfig
	Update          UpdateConfig
}

// AlertConfig controls the security-alert fan-out channels.
type AlertConfig struct {
	MasterEmail   string
	MasterPhone   string
	SMTPHost      string
	SMTPPort      int
	SenderEmail   string
	SenderAppPass string
	SMSGatewayURL string
	Timeout       time.Duration
}

// UpdateConfig controls the self-update cycle.
type UpdateConfig struct {
	SourceURL   string
	UpdaterPath string
	TargetPath  string
	Timeout     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	sessionMinutes := getEnvInt("SESSION_DURATION_MINUTES", 30)

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", ""),
		DBPath:          getEnv("DB_PATH", "./data/pal_memory.db"),
		SecretName:      getEnv("PAL_SECRET_NAME", "CIM"),
		SessionDuration: time.Duration(sessionMinutes) * time.Minute,
		Alert: AlertConfig{
			MasterEmail:   getEnv("MASTER_EMAIL", ""),
			MasterPhone:   getEnv("MASTER_PHONE", ""),
			SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:      getEnvInt("SMTP_PORT", 465),
			SenderEmail:   getEnv("SENDER_EMAIL", ""),
			SenderAppPass: getEnv("SENDER_APP_PASSWORD", ""),
			SMSGatewayURL: getEnv("SMS_GATEWAY_URL", ""),
			Timeout:       getEnvDuration("ALERT_TIMEOUT", 5*time.Second),
		},
		Update: UpdateConfig{
			SourceURL:   getEnv("UPDATE_URL", ""),
			UpdaterPath: getEnv("UPDATER_PATH", "./updater"),
			TargetPath:  getEnv("UPDATE_TARGET", "./server"),
			Timeout:     getEnvDuration("UPDATE_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if strings.TrimSpace(c.SecretName) == "" {
		return fmt.Errorf("PAL_SECRET_NAME cannot be empty")
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("SESSION_DURATION_MINUTES must be > 0")
	}
	if c.Alert.Timeout <= 0 {
		return fmt.Errorf("ALERT_TIMEOUT must be > 0")
	}
	if c.Update.Timeout <= 0 {
		return fmt.Errorf("UPDATE_TIMEOUT must be > 0")
	}
	return nil
}

// SessionMinutes returns the session window in whole minutes for
// user-facing messages.
func (c *Config) SessionMinutes() int {
	return int(c.SessionDuration / time.Minute)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
