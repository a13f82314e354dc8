package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	AdminEmail                string
	AdminName                 string
	AdminPassword             string
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseHost              string
	DatabaseName              string
	DatabasePassword          string
	DatabasePort              int
	DatabaseSSLMode           string
	DatabaseUser              string
	Environment               string
	Hostname                  string
	MaxCoverSizeBytes         int64
	ServerHost                string
	ServerPort                int
	SessionTTL                time.Duration
	UploadDir                 string
}

const environmentENV = "ENVIRONMENT"

// 5 MiB ceiling for cover image uploads.
const defaultMaxCoverSizeBytes = 5 << 20

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseHost:              "127.0.0.1",
		DatabaseName:              "shelfpress",
		DatabasePort:              5432,
		DatabaseSSLMode:           "disable",
		DatabaseUser:              "shelfpress",
		Hostname:                  hostname,
		MaxCoverSizeBytes:         defaultMaxCoverSizeBytes,
		ServerPort:                4260,
		SessionTTL:                24 * time.Hour,
		UploadDir:                 "./uploads",
	}

	cfg.Environment = os.Getenv(environmentENV)
	switch cfg.Environment {
	case "development", "":
		cfg.Environment = "development"
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	if cfg.Environment == "production" && cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD must be set in production")
	}

	return cfg, nil
}

// DatabaseDSN assembles the Postgres connection string.
func (cfg *Config) DatabaseDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseSSLMode)
}

// NewForTest returns a config suitable for package tests.
func NewForTest() *Config {
	cfg := &Config{
		DatabaseConnectRetryCount: 1,
		DatabaseConnectRetryDelay: time.Millisecond,
		Environment:               "test",
		Hostname:                  "test",
		MaxCoverSizeBytes:         defaultMaxCoverSizeBytes,
		SessionTTL:                24 * time.Hour,
	}
	loadTestConfig(cfg)
	return cfg
}
