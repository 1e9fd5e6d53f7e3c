package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Catalog  CatalogConfig
	Chat     ChatConfig
	Gemini   GeminiConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// PostgresConfig holds the optional analytics/embedding store configuration.
// An empty DSN disables the store entirely.
type PostgresConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// CatalogConfig holds location catalog configuration
type CatalogConfig struct {
	Path string // optional override; empty means the embedded dataset
}

// ChatConfig holds conversation tuning knobs
type ChatConfig struct {
	MaxRecommendations int // locations attached to a bot message
	PromptCandidates   int // candidates serialized into the prompt
	FallbackSample     int // catalog sample size when nothing matched locally
	HistoryWindow      int // messages scanned for a context city
	SessionTTLMinutes  int // idle minutes before a session is dropped
}

// GeminiConfig holds the text-generation API configuration
type GeminiConfig struct {
	APIKey         string
	APIBase        string
	Model          string
	EmbeddingModel string
	Temperature    float64
	Timeout        int // seconds
	BatchSize      int // embedding batch size
	Enabled        bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Postgres: PostgresConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CATALOG_PATH", ""),
		},
		Chat: ChatConfig{
			MaxRecommendations: getEnvAsInt("CHAT_MAX_RECOMMENDATIONS", 3),
			PromptCandidates:   getEnvAsInt("CHAT_PROMPT_CANDIDATES", 5),
			FallbackSample:     getEnvAsInt("CHAT_FALLBACK_SAMPLE", 10),
			HistoryWindow:      getEnvAsInt("CHAT_HISTORY_WINDOW", 10),
			SessionTTLMinutes:  getEnvAsInt("CHAT_SESSION_TTL_MINUTES", 60),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			APIBase:        getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1"),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
			Temperature:    getEnvAsFloat("GEMINI_TEMPERATURE", 0.5),
			Timeout:        getEnvAsInt("GEMINI_TIMEOUT", 30),
			BatchSize:      getEnvAsInt("GEMINI_BATCH_SIZE", 50),
			Enabled:        getEnv("GEMINI_API_KEY", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
