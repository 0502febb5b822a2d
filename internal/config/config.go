/**
 * @description
 * This file handles configuration management for the reconciliation-service.
 * It loads settings from environment variables, providing defaults for cron
 * schedules and business thresholds.
 */
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the reconciliation service.
type Config struct {
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	RedisURL         string `mapstructure:"REDIS_URL"`
	RabbitMQURL      string `mapstructure:"RABBITMQ_URL"`
	ServerPort       string `mapstructure:"SERVER_PORT"`
	WalletServiceURL string `mapstructure:"WALLET_SERVICE_URL"`
	MailServiceURL   string `mapstructure:"MAIL_SERVICE_URL"`

	InternalAPIKey              string `mapstructure:"INTERNAL_API_KEY"`
	WalletServiceInternalAPIKey string `mapstructure:"WALLET_SERVICE_INTERNAL_API_KEY"`
	MailServiceInternalAPIKey   string `mapstructure:"MAIL_SERVICE_INTERNAL_API_KEY"`

	OverdueJobSchedule      string `mapstructure:"OVERDUE_JOB_SCHEDULE"`
	WarningDecayJobSchedule string `mapstructure:"WARNING_DECAY_JOB_SCHEDULE"`

	OverdueGraceHours   int `mapstructure:"OVERDUE_GRACE_HOURS"`
	SuspensionThreshold int `mapstructure:"SUSPENSION_THRESHOLD"`
	SuspensionDays      int `mapstructure:"SUSPENSION_DAYS"`
	WarningDecayDays    int `mapstructure:"WARNING_DECAY_DAYS"`
	SweepLockTTLSeconds int `mapstructure:"SWEEP_LOCK_TTL_SECONDS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("OVERDUE_JOB_SCHEDULE", "0 * * * *")       // Every hour.
	viper.SetDefault("WARNING_DECAY_JOB_SCHEDULE", "0 0 * * *") // Daily at midnight.
	viper.SetDefault("OVERDUE_GRACE_HOURS", 24)
	viper.SetDefault("SUSPENSION_THRESHOLD", 3)
	viper.SetDefault("SUSPENSION_DAYS", 14)
	viper.SetDefault("WARNING_DECAY_DAYS", 30)
	viper.SetDefault("SWEEP_LOCK_TTL_SECONDS", 1800)
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("WALLET_SERVICE_URL")
	_ = viper.BindEnv("MAIL_SERVICE_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("WALLET_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("MAIL_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("OVERDUE_JOB_SCHEDULE")
	_ = viper.BindEnv("WARNING_DECAY_JOB_SCHEDULE")
	_ = viper.BindEnv("OVERDUE_GRACE_HOURS")
	_ = viper.BindEnv("SUSPENSION_THRESHOLD")
	_ = viper.BindEnv("SUSPENSION_DAYS")
	_ = viper.BindEnv("WARNING_DECAY_DAYS")
	_ = viper.BindEnv("SWEEP_LOCK_TTL_SECONDS")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Per-service keys fall back to the shared internal key.
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)
	config.WalletServiceInternalAPIKey = strings.TrimSpace(config.WalletServiceInternalAPIKey)
	if config.WalletServiceInternalAPIKey == "" {
		config.WalletServiceInternalAPIKey = config.InternalAPIKey
	}
	config.MailServiceInternalAPIKey = strings.TrimSpace(config.MailServiceInternalAPIKey)
	if config.MailServiceInternalAPIKey == "" {
		config.MailServiceInternalAPIKey = config.InternalAPIKey
	}

	return &config, nil
}
