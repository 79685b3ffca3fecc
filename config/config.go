// Package config loads process configuration from the environment and the
// optional pricing defaults file.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pacas-inventario/models"
)

// DatabaseConfig holds connection settings. DATABASE_URL wins over the
// individual DB_* variables; with neither set the SQLite file is used.
type DatabaseConfig struct {
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER"`
	Password   string `env:"DB_PASSWORD"`
	Name       string `env:"DB_NAME"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/pacas.db"`
}

// Config holds all process settings
type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	Database DatabaseConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
	LogOutput string `env:"LOG_OUTPUT" envDefault:"stdout"`

	// DisplayLocale selects thousands/decimal separators for formatted values
	DisplayLocale string `env:"DISPLAY_LOCALE" envDefault:"en"`

	// PricingDefaultsFile is an optional YAML file with the profit percentages and
	// default expenses used when the config record is first created
	PricingDefaultsFile string `env:"PRICING_DEFAULTS_FILE"`

	BackupDir  string `env:"BACKUP_DIR" envDefault:"data_backup"`
	ChromePath string `env:"CHROME_PATH"`

	GoogleCredentials   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	DriveBackupFolderID string `env:"DRIVE_BACKUP_FOLDER_ID"`

	// EnvFileLoaded reports whether a .env file was applied
	EnvFileLoaded bool `env:"-"`
}

// IsProduction reports whether ENV is "production"
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the environment. Outside production the given
// .env file (if it exists) is loaded first, overriding system variables.
func Load(envPath string) (*Config, error) {
	loaded := false
	if os.Getenv("ENV") != "production" && envPath != "" {
		if err := godotenv.Overload(envPath); err == nil {
			loaded = true
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.EnvFileLoaded = loaded
	return &cfg, nil
}

// LoadPricingDefaults returns the built-in pricing policy overridden by the
// keys of the YAML file at path. An empty path returns the built-in policy.
// Example file:
//
//	profit_percentages:
//	  premium: 90
//	  regular: 50
//	default_expenses:
//	  transport: 15
func LoadPricingDefaults(path string) (models.PricingConfig, error) {
	defaults := models.DefaultPricingConfig()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.PricingConfig{}, fmt.Errorf("failed to read pricing defaults: %w", err)
	}

	var fileConfig models.PricingConfig
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return models.PricingConfig{}, fmt.Errorf("failed to parse pricing defaults: %w", err)
	}

	for _, e := range fileConfig.ProfitPercentages.Entries() {
		if e.Value.IsNegative() {
			return models.PricingConfig{}, fmt.Errorf("invalid pricing defaults: profit percentage for %s must not be negative", e.Key)
		}
	}

	return defaults.Merge(models.PricingConfigUpdate{
		ProfitPercentages: &fileConfig.ProfitPercentages,
		DefaultExpenses:   &fileConfig.DefaultExpenses,
	}), nil
}
