package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	Env            string
	CORSOrigins    []string
	MaxRequestBody int64
}

// DBConfig holds database configuration. An empty URL selects the in-memory store.
type DBConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// JWTConfig holds token configuration
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// LLMConfig holds the language model client configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// AIConfig holds context window limits for generation
type AIConfig struct {
	DefaultContextMessages int
	MaxContextMessages     int
}

// RateLimitConfig limits AI routes per user
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AuthConfig holds account provisioning options
type AuthConfig struct {
	AllowRegistration  bool
	SuperadminEmail    string
	SuperadminPassword string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Config holds all configuration
type Config struct {
	AppName   string
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	LLM       LLMConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Log       LogConfig
}

// Load reads configuration from the environment, after loading an optional .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "AI Customer Messaging System"),
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("APP_ENV", "development"),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
			MaxRequestBody: int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", 10<<20)),
		},
		DB: DBConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			MaxConnIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			AccessTTL:  time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
			RefreshTTL: time.Duration(getEnvAsInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			Temperature: float32(getEnvAsFloat("LLM_TEMPERATURE", 1)),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 0),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
		},
		AI: AIConfig{
			DefaultContextMessages: getEnvAsInt("AI_DEFAULT_CONTEXT_MESSAGES", 10),
			MaxContextMessages:     getEnvAsInt("AI_MAX_CONTEXT_MESSAGES", 100),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Auth: AuthConfig{
			AllowRegistration:  getEnvAsBool("ALLOW_REGISTRATION", false),
			SuperadminEmail:    getEnv("SUPERADMIN_EMAIL", ""),
			SuperadminPassword: getEnv("SUPERADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		cfg.JWT.Secret = "development-secret-change-me"
	}

	return cfg, cfg.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Validate rejects configurations the services cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive"))
	}
	if c.AI.DefaultContextMessages <= 0 || c.AI.MaxContextMessages < c.AI.DefaultContextMessages {
		errs = append(errs, errors.New("AI context message limits are inconsistent"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("LLM_TIMEOUT must be positive"))
	}
	if (c.Auth.SuperadminEmail == "") != (c.Auth.SuperadminPassword == "") {
		errs = append(errs, errors.New("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

// LogFields returns the configuration as zap fields, secrets omitted
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("app", c.AppName),
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.Bool("database", c.DB.URL != ""),
		zap.String("llm_model", c.LLM.Model),
		zap.Bool("llm_configured", c.LLM.APIKey != ""),
		zap.Duration("access_ttl", c.JWT.AccessTTL),
		zap.Duration("refresh_ttl", c.JWT.RefreshTTL),
		zap.Bool("registration", c.Auth.AllowRegistration),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
