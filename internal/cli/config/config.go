package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the modelforge configuration
type Config struct {
	ProjectName string        `mapstructure:"project_name"`
	Models      ModelsConfig  `mapstructure:"models"`
	Output      OutputConfig  `mapstructure:"output"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// ModelsConfig locates the model declaration files
type ModelsConfig struct {
	Dir string `mapstructure:"dir"`
}

// OutputConfig controls where derived artifacts are written
type OutputConfig struct {
	SchemaDir string `mapstructure:"schema_dir"`
	FormsDir  string `mapstructure:"forms_dir"`
}

// LoggingConfig controls diagnostic output
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration from modelforge.yml or modelforge.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("models.dir", "models")
	v.SetDefault("output.schema_dir", "db/schema")
	v.SetDefault("output.forms_dir", "app/forms")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Set config name and paths
	v.SetConfigName("modelforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q (expected debug, info, warn, or error)", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid logging.format %q (expected console or json)", cfg.Logging.Format)
	}
	return nil
}

// InProject checks if the current directory is a modelforge project
func InProject() bool {
	if _, err := os.Stat("modelforge.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("modelforge.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for modelforge.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "modelforge.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "modelforge.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a modelforge project (no modelforge.yml found)")
		}
		dir = parent
	}
}
