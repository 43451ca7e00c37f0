package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds everything askdata reads from the environment. A .env
// file in the working directory is loaded first when present; real
// environment variables win.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Gemini   GeminiConfig
}

// DatabaseConfig is the PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" env-default:"askdata"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

// ConnString renders the lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port   string `env:"PORT" env-default:"8000"`
	APIKey string `env:"API_KEY"`
}

// GeminiConfig configures the generative fallback model. API keys are
// read separately by nlquery.KeyManager so they can rotate.
type GeminiConfig struct {
	Model string `env:"GEMINI_MODEL" env-default:"gemini-1.5-flash"`
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	// Missing .env is fine; containers set real env vars.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}
