package config

// GameConfig configures the boerenbridge module.
type GameConfig struct {
	Server   ServerConfig
	Redis    RedisConfig
	Database DatabaseConfig
	RepoType string // "redis" or "memory"
	Settings GameSettings
}

type GameSettings struct {
	// SystemAdmin holds controller rights on every game and registry.
	SystemAdmin string
	// TopScoresLimit caps the leaderboard size.
	TopScoresLimit int
}

// LoadGameConfig loads configuration for the boerenbridge module
func LoadGameConfig() *GameConfig {
	return &GameConfig{
		Server: ServerConfig{
			Name:     "game-service",
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Host: getEnv("REDIS_HOST", "localhost"),
			Port: getEnv("REDIS_PORT", "6379"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "cardgame_user"),
			Password: getEnv("DB_PASSWORD", "cardgame_pass"),
			Name:     getEnv("DB_NAME", "cardgame_db"),
		},
		RepoType: getEnv("GAME_REPO_TYPE", "redis"),
		Settings: GameSettings{
			SystemAdmin:    getEnv("GAME_SYSTEM_ADMIN", ""),
			TopScoresLimit: getEnvInt("GAME_TOP_SCORES_LIMIT", 10),
		},
	}
}
