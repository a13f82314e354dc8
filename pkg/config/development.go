package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func loadDevelopmentConfig(cfg *Config) {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	cfg.DatabaseDebug = true
	cfg.ServerHost = "127.0.0.1"
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminName = "Admin"
	cfg.AdminPassword = "password"

	loadEnvOverrides(cfg)
}

func loadEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.ServerPort = port
		}
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.DatabaseHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.DatabasePort = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.DatabaseUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DatabasePassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.DatabaseName = v
	}
	if v := os.Getenv("DB_SSL_MODE"); v != "" {
		cfg.DatabaseSSLMode = v
	}
	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.AdminEmail = v
	}
	if v := os.Getenv("ADMIN_NAME"); v != "" {
		cfg.AdminName = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
}
