package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Tax      TaxConfig
	Rates    RatesConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TaxConfig holds GST and TCS settings
type TaxConfig struct {
	TcsThreshold      decimal.Decimal // per customer per financial year
	TcsRateWithPAN    decimal.Decimal // percent
	TcsRateWithoutPAN decimal.Decimal // percent
	DefaultGSTPercent decimal.Decimal
	RoundingPolicy    string // ROUND_TO_RUPEE or ROUND_NONE
	IntraStateDefault bool
}

// RatesConfig holds rate seeding settings for the migration CLI
type RatesConfig struct {
	SeedPurities []string // metal purity codes seeded with zero-rate placeholders
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with JEWEL_ prefix (e.g., JEWEL_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("JEWEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Tax: TaxConfig{
			TcsThreshold:      decimalOrZero(v.GetString("tax.tcs_threshold")),
			TcsRateWithPAN:    decimalOrZero(v.GetString("tax.tcs_rate_with_pan")),
			TcsRateWithoutPAN: decimalOrZero(v.GetString("tax.tcs_rate_without_pan")),
			DefaultGSTPercent: decimalOrZero(v.GetString("tax.default_gst_percent")),
			RoundingPolicy:    v.GetString("tax.rounding_policy"),
			IntraStateDefault: v.GetBool("tax.intra_state_default"),
		},
		Rates: RatesConfig{
			SeedPurities: v.GetStringSlice("rates.seed_purities"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decimalOrZero parses a decimal config value, returning zero on empty or
// malformed input so defaults can take over
func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "jewelerp-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "jewelerp"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	// Section 206C(1F) figures: 10 lakh threshold, 0.1% with PAN, 1% without
	if cfg.Tax.TcsThreshold.IsZero() {
		cfg.Tax.TcsThreshold = decimal.NewFromInt(1000000)
	}
	if cfg.Tax.TcsRateWithPAN.IsZero() {
		cfg.Tax.TcsRateWithPAN = decimal.NewFromFloat(0.1)
	}
	if cfg.Tax.TcsRateWithoutPAN.IsZero() {
		cfg.Tax.TcsRateWithoutPAN = decimal.NewFromInt(1)
	}
	if cfg.Tax.DefaultGSTPercent.IsZero() {
		cfg.Tax.DefaultGSTPercent = decimal.NewFromInt(3)
	}
	if cfg.Tax.RoundingPolicy == "" {
		cfg.Tax.RoundingPolicy = "ROUND_TO_RUPEE"
	}
	if len(cfg.Rates.SeedPurities) == 0 {
		cfg.Rates.SeedPurities = []string{"GOLD_24K", "GOLD_22K", "GOLD_18K", "SILVER_925"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	// Validate connection pool settings
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Tax.TcsThreshold.IsNegative() {
		return fmt.Errorf("tax.tcs_threshold cannot be negative")
	}
	if c.Tax.TcsRateWithPAN.IsNegative() || c.Tax.TcsRateWithoutPAN.IsNegative() {
		return fmt.Errorf("tax TCS rates cannot be negative")
	}
	switch c.Tax.RoundingPolicy {
	case "ROUND_TO_RUPEE", "ROUND_NONE":
	default:
		return fmt.Errorf("tax.rounding_policy must be ROUND_TO_RUPEE or ROUND_NONE, got %q", c.Tax.RoundingPolicy)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
