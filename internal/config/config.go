package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/teemow/calmux/internal/auth"
)

// Config is the process configuration.
type Config struct {
	DBPath string `env:"CALMUX_DB_PATH" envDefault:"calmux.db"`

	// HTTPAddr is where the streamable HTTP transport listens.
	HTTPAddr    string `env:"CALMUX_HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"CALMUX_METRICS_ADDR" envDefault:":9090"`

	// DefaultUser owns every stdio request and the CLI commands. HTTP
	// requests must name their user.
	DefaultUser string `env:"CALMUX_DEFAULT_USER" envDefault:"default"`

	LogFormat string `env:"CALMUX_LOG_FORMAT" envDefault:"text"`
	LogLevel  string `env:"CALMUX_LOG_LEVEL" envDefault:"info"`
	ReadOnly  bool   `env:"CALMUX_READ_ONLY"`

	// TimeZone is used for plain dates when a request names none.
	TimeZone string `env:"CALMUX_TIME_ZONE" envDefault:"UTC"`

	GoogleClientID        string `env:"CALMUX_GOOGLE_CLIENT_ID"`
	GoogleClientSecret    string `env:"CALMUX_GOOGLE_CLIENT_SECRET"`
	MicrosoftClientID     string `env:"CALMUX_MICROSOFT_CLIENT_ID"`
	MicrosoftClientSecret string `env:"CALMUX_MICROSOFT_CLIENT_SECRET"`
	MicrosoftTenant       string `env:"CALMUX_MICROSOFT_TENANT" envDefault:"common"`
	RedirectURL           string `env:"CALMUX_REDIRECT_URL" envDefault:"http://localhost:8085/callback"`
}

// Load reads .env when present and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// OAuth returns the client registrations used for connecting and
// refreshing accounts.
func (c *Config) OAuth() auth.Config {
	return auth.Config{
		GoogleClientID:        c.GoogleClientID,
		GoogleClientSecret:    c.GoogleClientSecret,
		MicrosoftClientID:     c.MicrosoftClientID,
		MicrosoftClientSecret: c.MicrosoftClientSecret,
		MicrosoftTenant:       c.MicrosoftTenant,
		RedirectURL:           c.RedirectURL,
	}
}
