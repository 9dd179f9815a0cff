package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"development"`
	Port           string `env:"APP_PORT" envDefault:":8000"`
	AppURL         string `env:"APP_URL" envDefault:"http://localhost:8000"`
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"$"`

	DB       DBConfig       `envPrefix:"DB_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	Midtrans MidtransConfig `envPrefix:"MIDTRANS_"`
}

type DBConfig struct {
	Host         string        `env:"HOST" envDefault:"127.0.0.1"`
	Port         string        `env:"PORT" envDefault:"3306"`
	User         string        `env:"USER" envDefault:"root"`
	Password     string        `env:"PASSWORD"`
	Name         string        `env:"NAME" envDefault:"storefront"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	ConnLifetime time.Duration `env:"CONN_LIFETIME" envDefault:"1h"`
	MaxRetries   int           `env:"MAX_RETRIES" envDefault:"10"`
	RetryDelay   time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
}

type JWTConfig struct {
	Secret     string        `env:"SECRET"`
	Issuer     string        `env:"ISSUER" envDefault:"storefront-api"`
	Audience   string        `env:"AUDIENCE" envDefault:"storefront-clients"`
	AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

type MidtransConfig struct {
	ServerKey   string `env:"SERVER_KEY"`
	ClientKey   string `env:"CLIENT_KEY"`
	Environment string `env:"ENV" envDefault:"sandbox"`
}

// DSN builds the go-sql-driver/mysql connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, EnvDevelopment)
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.JWT.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWT.Secret = "dev-insecure-secret"
	}

	return &cfg, nil
}
