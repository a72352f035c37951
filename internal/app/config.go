package app

import (
	"io/fs"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/coffee-orders/internal/domain/discount"
	"github.com/xenking/coffee-orders/internal/domain/order"
)

// Config holds the complete application configuration, loadable from
// environment variables (COFFEE_ prefix), a .env file, or YAML config files.
type Config struct {
	DatabaseURL       string         `env:"DATABASE_URL" yaml:"database_url" usage:"PostgreSQL connection URL (COFFEE_DATABASE_URL)"`
	OrderNumberPrefix string         `env:"ORDER_NUMBER_PREFIX" yaml:"order_number_prefix" default:"RCS" usage:"Prefix of generated order numbers"`
	Discount          DiscountConfig `env:"DISCOUNT" yaml:"discount"`
}

// DiscountConfig toggles the promotional rules.
type DiscountConfig struct {
	Enabled                 bool `env:"ENABLED" yaml:"enabled" default:"true" usage:"Master switch for all promotions"`
	PercentageOverThreshold bool `env:"PERCENTAGE_OVER_THRESHOLD" yaml:"percentage_over_threshold" default:"true" usage:"25% off orders over 12.00"`
	FreeCheapestAfterN      bool `env:"FREE_CHEAPEST_AFTER_N" yaml:"free_cheapest_after_n" default:"true" usage:"Cheapest drink free with 3+ drinks"`
}

// Policy returns the discount policy snapshot described by c.
func (c DiscountConfig) Policy() discount.Policy {
	return discount.Policy{
		Enabled:                 c.Enabled,
		PercentageOverThreshold: c.PercentageOverThreshold,
		FreeCheapestAfterN:      c.FreeCheapestAfterN,
	}
}

var defaultConfigFiles = []string{"config.yaml", "/etc/coffee-orders/config.yaml"}

// LoadConfig loads configuration from a local .env file, environment
// variables and YAML config files.
func LoadConfig() (*Config, error) {
	return loadConfig(".env", defaultConfigFiles)
}

func loadConfig(envFile string, files []string) (*Config, error) {
	// Variables already present in the environment win over .env.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(err, "load %s", envFile)
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "COFFEE",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if cfg.OrderNumberPrefix == "" {
		cfg.OrderNumberPrefix = order.DefaultNumberPrefix
	}

	return &cfg, nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required: set COFFEE_DATABASE_URL")
	}
	return nil
}
