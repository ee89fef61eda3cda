package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Data       DataConfig
	Classifier map[crafting.Discipline]classifier.Config
}

// DatabaseConfig holds database connection settings; an empty URL runs without postgres
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig holds file system paths and ledger sizing
type DataConfig struct {
	MaterialsFile    string // .json, .yaml, .xlsx or .csv
	ClassifierConfig string // optional YAML overrides
	LedgerCapacity   int
	Preload          bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			GinMode:         getEnvOrDefault("GIN_MODE", "debug"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Data: DataConfig{
			MaterialsFile:    getEnvOrDefault("MATERIALS_FILE", ""),
			ClassifierConfig: getEnvOrDefault("CLASSIFIER_CONFIG", ""),
			LedgerCapacity:   getEnvIntOrDefault("LEDGER_CAPACITY", 1000),
			Preload:          getEnvBoolOrDefault("PRELOAD", true),
		},
	}

	classifiers, err := LoadClassifierConfigs(cfg.Data.ClassifierConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load classifier configuration")
	}
	cfg.Classifier = classifiers

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// disciplineOverride is one entry of the classifier YAML file; unset fields keep the default
type disciplineOverride struct {
	Backend   *string  `yaml:"backend"`
	ModelPath *string  `yaml:"model_path"`
	Threshold *float64 `yaml:"threshold"`
	Enabled   *bool    `yaml:"enabled"`
}

type classifierFile struct {
	Disciplines map[string]disciplineOverride `yaml:"disciplines"`
}

// LoadClassifierConfigs builds per-discipline configs from defaults, then the
// optional YAML file at path, then <DISCIPLINE>_* environment variables
func LoadClassifierConfigs(path string) (map[crafting.Discipline]classifier.Config, error) {
	out := classifier.DefaultConfigs()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		var file classifierFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse %s: %w", path, err))
		}
		for name, o := range file.Disciplines {
			d, err := crafting.ParseDiscipline(name)
			if err != nil {
				return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %v", path, err))
			}
			cfg := out[d]
			if o.Backend != nil {
				kind, err := classifier.ParseBackendKind(*o.Backend)
				if err != nil {
					return nil, errors.ConfigInvalid(fmt.Sprintf("%s: %s: %v", path, d, err))
				}
				cfg.BackendKind = kind
			}
			if o.ModelPath != nil {
				cfg.ModelPath = *o.ModelPath
			}
			if o.Threshold != nil {
				cfg.Threshold = *o.Threshold
			}
			if o.Enabled != nil {
				cfg.Enabled = *o.Enabled
			}
			out[d] = cfg
		}
	}

	for _, d := range crafting.AllDisciplines() {
		cfg, err := applyEnv(out[d])
		if err != nil {
			return nil, err
		}
		out[d] = cfg
	}
	return out, nil
}

// applyEnv overlays SMITHING_MODEL_PATH style variables. Malformed values are
// errors rather than silently ignored.
func applyEnv(cfg classifier.Config) (classifier.Config, error) {
	prefix := strings.ToUpper(string(cfg.Discipline)) + "_"

	if v := os.Getenv(prefix + "BACKEND"); v != "" {
		kind, err := classifier.ParseBackendKind(v)
		if err != nil {
			return cfg, errors.ConfigInvalid(fmt.Sprintf("%sBACKEND: %v", prefix, err))
		}
		cfg.BackendKind = kind
	}
	if v := os.Getenv(prefix + "MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv(prefix + "THRESHOLD"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, errors.ConfigInvalid(fmt.Sprintf("%sTHRESHOLD: %q is not a number", prefix, v))
		}
		cfg.Threshold = th
	}
	if v := os.Getenv(prefix + "ENABLED"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, errors.ConfigInvalid(fmt.Sprintf("%sENABLED: %q is not a boolean", prefix, v))
		}
		cfg.Enabled = on
	}
	return cfg, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Data.LedgerCapacity <= 0 {
		return errors.ConfigInvalid("ledger capacity must be positive")
	}
	for _, d := range crafting.AllDisciplines() {
		if err := config.Classifier[d].Validate(); err != nil {
			return errors.WithCode(errors.CodeConfigInvalid, err)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
