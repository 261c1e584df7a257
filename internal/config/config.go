package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type HTTPConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
	AutoMigrate     bool
}

type AuthConfig struct {
	AccessSecret string
}

type PDFConfig struct {
	FontPath string
}

type MetricsConfig struct {
	Enabled bool
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	PDF         PDFConfig
	Metrics     MetricsConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("METRICS_ENABLED", true)

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		PDF: PDFConfig{
			FontPath: v.GetString("PDF_FONT_PATH"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.DB.Driver == "" {
		cfg.DB.Driver = DriverPostgres
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs outside local development.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func validate(cfg *Config) error {
	var err error
	if cfg.DB.DSN == "" {
		err = multierr.Append(err, errors.New("DB_DSN is required"))
	}
	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverSQLite {
		err = multierr.Append(err, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.DB.Driver))
	}
	if cfg.DB.ConnMaxLifetime != "" {
		if _, parseErr := time.ParseDuration(cfg.DB.ConnMaxLifetime); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", parseErr))
		}
	}
	if cfg.Auth.AccessSecret == "" {
		err = multierr.Append(err, errors.New("JWT_ACCESS_SECRET is required"))
	}
	return err
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
