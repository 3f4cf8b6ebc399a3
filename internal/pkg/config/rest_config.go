package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable that overrides a setting,
// e.g. CRYPTO_FACADE_DATABASE_DSN.
const EnvPrefix = "CRYPTO_FACADE"

// RestConfig holds the settings of the REST server
type RestConfig struct {
	Port           string           `mapstructure:"port" validate:"required,numeric"`
	AllowedOrigins []string         `mapstructure:"allowed_origins" validate:"required,min=1"`
	Logger         LoggerSettings   `mapstructure:"logger"`
	Database       DatabaseSettings `mapstructure:"database"`
	Engine         EngineSettings   `mapstructure:"engine"`
}

// Validate checks the server settings and every nested section
func (c *RestConfig) Validate() error {
	return validateSettings("RestConfig", c)
}

// CliConfig holds the settings of the command line tool
type CliConfig struct {
	Logger LoggerSettings `mapstructure:"logger"`
	Engine EngineSettings `mapstructure:"engine"`
}

// Validate checks every section
func (c *CliConfig) Validate() error {
	return validateSettings("CliConfig", c)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("logger.log_level", LogLevelInfo)
	v.SetDefault("logger.log_type", LogTypeConsole)
	v.SetDefault("logger.file_path", "")
	v.SetDefault("logger.max_size", 0)
	v.SetDefault("logger.max_backups", 0)
	v.SetDefault("logger.max_age", 0)
	v.SetDefault("database.type", DatabaseTypeSqlite)
	v.SetDefault("database.dsn", "crypto-facade.db")
	v.SetDefault("database.name", "crypto_facade")
	v.SetDefault("engine.name", EngineSoftware)
	v.SetDefault("engine.max_handles", 0)
	v.SetDefault("engine.default_digest", "SHA-256")
	return v
}

// InitializeRestConfig reads the YAML file at path, applies environment
// overrides and validates the result.
func InitializeRestConfig(path string) (*RestConfig, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg RestConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitializeCliConfig builds the CLI settings from defaults and the
// environment only.
func InitializeCliConfig() (*CliConfig, error) {
	v := newViper()

	var cfg CliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
