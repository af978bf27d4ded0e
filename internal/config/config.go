// Package config holds the explicit configuration object passed into each
// component's constructor. There are no process-wide singletons; viper is
// read once at startup and unmarshalled here.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/quotana/quotana/internal/common"
)

// Config is the application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Model    ModelConfig    `mapstructure:"model"`
	Registry RegistryConfig `mapstructure:"registry"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	DBPath   string         `mapstructure:"db_path"`
}

// DataConfig locates the purchase history extracts.
type DataConfig struct {
	HeadersPath string `mapstructure:"headers_path"`
	ItemsPath   string `mapstructure:"items_path"`
}

// ModelConfig locates the persisted classifier artifacts.
type ModelConfig struct {
	Dir string `mapstructure:"dir"`
}

// ModelPath is the serialized regression model artifact.
func (m ModelConfig) ModelPath() string {
	return filepath.Join(m.Dir, "supplier_classifier.json")
}

// ScalerPath is the serialized feature scaler artifact. The model and the
// scaler are only usable as a pair.
func (m ModelConfig) ScalerPath() string {
	return filepath.Join(m.Dir, "supplier_scaler.json")
}

// RegistryConfig configures the external company-registry lookup.
type RegistryConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SMTPConfig configures outbound quotation email.
type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	Recipient string `mapstructure:"recipient"`
	Port      int    `mapstructure:"port"`
}

// Load reads the configuration out of viper with defaults applied.
func Load() (*Config, error) {
	viper.SetDefault("db_path", "data/quotana.db")
	viper.SetDefault("data.headers_path", "data/samples/purchase_headers.xlsx")
	viper.SetDefault("data.items_path", "data/samples/purchase_items.xlsx")
	viper.SetDefault("model.dir", "models")
	viper.SetDefault("registry.base_url", "https://brasilapi.com.br/api/cnpj/v1")
	viper.SetDefault("registry.timeout_seconds", 10)
	viper.SetDefault("smtp.port", 587)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// ValidateSMTP reports whether the mail transport is configured.
func (c *Config) ValidateSMTP() error {
	if c.SMTP.Host == "" || c.SMTP.User == "" || c.SMTP.Recipient == "" {
		return fmt.Errorf("%w: smtp host, user and recipient are required", common.ErrMissingConfig)
	}
	return nil
}
