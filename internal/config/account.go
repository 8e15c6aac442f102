package config

import "time"

// AccountConfig configures the account module.
type AccountConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
}

// LoadAccountConfig loads configuration for the account module
func LoadAccountConfig() *AccountConfig {
	return &AccountConfig{
		Server: ServerConfig{
			HTTPPort: getEnv("ACCOUNT_HTTP_PORT", "8082"),
			Name:     "account-service",
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "cardgame_user"),
			Password: getEnv("DB_PASSWORD", "cardgame_pass"),
			Name:     getEnv("DB_NAME", "cardgame_db"),
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", "dev-secret-key"),
			Duration: 24 * time.Hour,
		},
	}
}
