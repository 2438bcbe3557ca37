// Package config loads run settings and the customer table from the
// environment.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	// FleetControl GraphQL endpoint
	APIURL string `env:"FC_API_URL" env-default:"https://api.fleetcontrol.nordcloudapp.com/graphql" validate:"required,url"`
	// Overall timeout of one GraphQL request
	HTTPTimeout time.Duration `env:"FC_HTTP_TIMEOUT" env-default:"30s"`

	// Query selection ("1".."3")
	Query string `env:"FC_QUERY"`
	// Customer selection ("0" for all)
	Customer string `env:"FC_CUSTOMER"`
	// Report year and month; invalid values fall back to the current date
	ReportYear  string `env:"FC_REPORT_YEAR"`
	ReportMonth string `env:"FC_REPORT_MONTH"`

	// Directory CSV files are written to
	OutputDir string `env:"FC_OUTPUT_DIR" env-default:"."`
	// Optional YAML customer table
	CustomersFile string `env:"FC_CUSTOMERS_FILE"`
	// Optional node_exporter textfile for run metrics
	MetricsFile string `env:"FC_METRICS_FILE"`

	LogLevel string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`

	TemporalAddress   string `env:"TEMPORAL_ADDRESS" env-default:"localhost:7233"`
	TemporalNamespace string `env:"TEMPORAL_NAMESPACE" env-default:"default"`

	Mail MailConfig
}

type MailConfig struct {
	Enabled  bool     `env:"FC_MAIL_ENABLED" env-default:"false"`
	Host     string   `env:"SMTP_HOST" validate:"required_if=Enabled true"`
	Port     int      `env:"SMTP_PORT" env-default:"587" validate:"min=1,max=65535"`
	Username string   `env:"SMTP_USER"`
	Password string   `env:"SMTP_PASSWORD"`
	From     string   `env:"MAIL_FROM" validate:"required_if=Enabled true"`
	To       []string `env:"MAIL_TO" env-separator:"," validate:"required_if=Enabled true,dive,email"`
}

var validate = validator.New()

// Load reads an optional .env file, binds the environment and validates the
// result.
func Load(logger *zap.Logger, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints, e.g. after flags were applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ZapLevel maps LogLevel onto a zap level, defaulting to info.
func (c *Config) ZapLevel() zap.AtomicLevel {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return level
}
