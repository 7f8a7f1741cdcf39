package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumpybrain/DedMult/pkg/utils"
)

type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Game      GameConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	CORSDebug      bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type GameConfig struct {
	Tick             time.Duration
	MaxPlayers       int
	MapPath          string
	Priorities       string
	DefaultShipPower int
	HomePowerPolicy  string
	Bots             int
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	Channel  string
}

type RateLimitConfig struct {
	Enabled           bool
	MessagesPerSecond float64
	BurstSize         int
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	// .env необязателен: в контейнере всё приходит через окружение.
	_ = godotenv.Load()

	cfg := &Config{
		Server:    loadServerConfig(),
		Logging:   loadLoggingConfig(),
		Game:      loadGameConfig(),
		Redis:     loadRedisConfig(),
		RateLimit: loadRateLimitConfig(),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadServerConfig() ServerConfig {
	origins := strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	return ServerConfig{
		Port:           utils.GetEnv("SERVER_PORT", "8080"),
		AllowedOrigins: origins,
		CORSDebug:      utils.GetEnvBool("CORS_DEBUG", false),
		ReadTimeout:    time.Duration(utils.GetEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout:   time.Duration(utils.GetEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:    time.Duration(utils.GetEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  utils.GetEnv("LOG_LEVEL", "info"),
		Format: utils.GetEnv("LOG_FORMAT", "text"),
	}
}

func loadGameConfig() GameConfig {
	return GameConfig{
		Tick:             time.Duration(utils.GetEnvInt("GAME_TICK_MS", 100)) * time.Millisecond,
		MaxPlayers:       utils.GetEnvInt("GAME_MAX_PLAYERS", 8),
		MapPath:          utils.GetEnv("GAME_MAP_PATH", ""),
		Priorities:       utils.GetEnv("GAME_PRIORITIES", "BuildShip=10,MoveShip=5"),
		DefaultShipPower: utils.GetEnvInt("GAME_DEFAULT_SHIP_POWER", 1),
		HomePowerPolicy:  strings.ToLower(utils.GetEnv("GAME_HOME_POWER_POLICY", "actual")),
		Bots:             utils.GetEnvInt("GAME_BOTS", 0),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  utils.GetEnvBool("REDIS_ENABLED", false),
		URL:      utils.GetEnv("REDIS_URL", ""),
		Host:     utils.GetEnv("REDIS_HOST", "localhost"),
		Port:     utils.GetEnv("REDIS_PORT", "6379"),
		Password: utils.GetEnv("REDIS_PASSWORD", ""),
		DB:       utils.GetEnvInt("REDIS_DB", 0),
		Channel:  utils.GetEnv("REDIS_CHANNEL", "dedmult:turns"),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           utils.GetEnvBool("RATE_LIMIT_ENABLED", true),
		MessagesPerSecond: utils.GetEnvFloat("RATE_LIMIT_MESSAGES_PER_SECOND", 10),
		BurstSize:         utils.GetEnvInt("RATE_LIMIT_BURST_SIZE", 20),
	}
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Game.Tick <= 0 {
		return fmt.Errorf("GAME_TICK_MS must be positive")
	}
	if c.Game.MaxPlayers < 1 || c.Game.MaxPlayers > 8 {
		return fmt.Errorf("GAME_MAX_PLAYERS must be between 1 and 8, got %d", c.Game.MaxPlayers)
	}
	if c.Game.DefaultShipPower < 1 {
		return fmt.Errorf("GAME_DEFAULT_SHIP_POWER must be at least 1")
	}
	switch c.Game.HomePowerPolicy {
	case "actual", "flat":
	default:
		return fmt.Errorf("GAME_HOME_POWER_POLICY must be 'actual' or 'flat', got %q", c.Game.HomePowerPolicy)
	}
	if c.Game.Bots < 0 || c.Game.Bots >= c.Game.MaxPlayers {
		return fmt.Errorf("GAME_BOTS must leave room for at least one human player")
	}
	if c.Redis.Enabled && c.Redis.Channel == "" {
		return fmt.Errorf("REDIS_CHANNEL is required when Redis is enabled")
	}
	if c.RateLimit.Enabled && (c.RateLimit.MessagesPerSecond <= 0 || c.RateLimit.BurstSize < 1) {
		return fmt.Errorf("rate limit must have positive rate and burst")
	}
	return nil
}
