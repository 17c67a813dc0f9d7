package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tmc/pkg/logging"
)

const (
	userConfigDir  = ".config/tmc"
	configFileName = "config.yaml"
)

// DefaultConfigPath returns the config file location: TMC_CONFIG_PATH when
// set, otherwise ~/.config/tmc/config.yaml.
func DefaultConfigPath() string {
	if p := os.Getenv("TMC_CONFIG_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, configFileName)
}

// Load resolves the configuration. A .env file in the working directory is
// loaded into the environment first, then the YAML config file (if any)
// merges over the defaults, then the environment variables win. TMC_TOKEN is
// always required; TMC_DOMAIN is required unless a base URL override is
// configured.
func Load(configPath string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Debug("config", "no config file at %s, using defaults", configPath)
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", configPath, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file %s: %w", configPath, err)
			}
			logging.Debug("config", "loaded configuration from %s", configPath)
		}
	}

	cfg.Domain = os.Getenv("TMC_DOMAIN")
	cfg.Token = os.Getenv("TMC_TOKEN")
	if url := os.Getenv("TMC_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	cfg.Debug = os.Getenv("TMC_DEBUG") == "TRUE"
	cfg.NoCache = os.Getenv("TMC_NO_CACHE") == "TRUE"

	var missing []string
	if cfg.Domain == "" && cfg.BaseURL == "" {
		missing = append(missing, "TMC_DOMAIN")
	}
	if cfg.Token == "" {
		missing = append(missing, "TMC_TOKEN")
	}
	if len(missing) > 0 {
		return Config{}, &MissingEnvError{Vars: missing}
	}
	return cfg, nil
}
