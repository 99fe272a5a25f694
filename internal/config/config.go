package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgerview/internal/income"
)

// FileName is the config file at the root of a dataset repo.
const FileName = "ledgerview.yaml"

// EnvPrefix prefixes every environment override, e.g. LEDGERVIEW_CURRENCY_BASE.
const EnvPrefix = "ledgerview"

var validate = validator.New()

// Config represents the top-level ledgerview.yaml configuration.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Currency       CurrencyConfig       `yaml:"currency"`
	Source         SourceConfig         `yaml:"source"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Classification income.Rules         `yaml:"classification" ignored:"true"`
	Log            LogConfig            `yaml:"log"`
	Git            GitConfig            `yaml:"git"`
}

// BusinessConfig identifies the agency.
type BusinessConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// CurrencyConfig names the reporting currency.
type CurrencyConfig struct {
	Base string `yaml:"base" validate:"required,len=3,uppercase"`
}

// SourceConfig selects where the dataset is read from. An empty csv path
// means the repo root; relative paths are resolved against it.
type SourceConfig struct {
	Format string `yaml:"format" validate:"oneof=csv sqlite"`
	Path   string `yaml:"path,omitempty" validate:"required_if=Format sqlite"`
}

// ReconciliationConfig toggles the journal/transaction cross-check.
type ReconciliationConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `yaml:"format" validate:"oneof=text json"`
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
}

// GitConfig controls committing dataset changes made by init and import.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" split_words:"true"`
	AuthorName  string `yaml:"author_name" split_words:"true" validate:"required_if=AutoCommit true"`
	AuthorEmail string `yaml:"author_email" split_words:"true" validate:"omitempty,email"`
}

// Load reads a ledgerview.yaml file from disk, applies LEDGERVIEW_*
// environment overrides and validates the result. Sections missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads <dir>/.env into the process environment. Variables already
// set win. A missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new dataset.
func Default(businessName, baseCurrency string) *Config {
	if baseCurrency == "" {
		baseCurrency = "EGP"
	}
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Currency: CurrencyConfig{
			Base: baseCurrency,
		},
		Source: SourceConfig{
			Format: "csv",
		},
		Reconciliation: ReconciliationConfig{
			Enabled: true,
		},
		Classification: income.DefaultRules(),
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Git: GitConfig{
			AuthorName:  "ledgerview",
			AuthorEmail: "books@agency.local",
		},
	}
}

// Validate checks field constraints and the classification rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Classification.Validate(); err != nil {
		return fmt.Errorf("invalid config: classification: %w", err)
	}
	return nil
}

// SourcePath resolves the dataset location against repoRoot.
func (c *Config) SourcePath(repoRoot string) string {
	p := c.Source.Path
	switch {
	case p == "":
		return repoRoot
	case filepath.IsAbs(p):
		return p
	}
	return filepath.Join(repoRoot, p)
}
