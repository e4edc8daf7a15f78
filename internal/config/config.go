package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcncl/json2env/internal/models"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for json2env
type Config struct {
	KeySeparator   string `yaml:"key_separator"`
	ArraySeparator string `yaml:"array_separator"`
	EnumerateArray bool   `yaml:"enumerate_array"`
	JSONC          bool   `yaml:"jsonc"`
	Debug          bool   `yaml:"debug"`
}

// Flags carries the values parsed from the command line.
type Flags struct {
	KeySeparator   string
	ArraySeparator string
	EnumerateArray bool
	JSONC          bool
	Debug          bool
}

// Flag names as kong reports them, used as keys of the set passed to ApplyFlags.
const (
	FlagKeySeparator   = "key-separator"
	FlagArraySeparator = "array-separator"
	FlagEnumerateArray = "enumerate-array"
	FlagJSONC          = "jsonc"
	FlagDebug          = "debug"
)

// configNames are searched for, in order, in every directory by FindConfigFile.
var configNames = []string{".json2env.yml", ".json2env.yaml", "json2env.yml", "json2env.yaml"}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		KeySeparator:   models.DefaultKeySeparator,
		ArraySeparator: models.DefaultArraySeparator,
		EnumerateArray: false,
		JSONC:          false,
		Debug:          false,
	}
}

// LoadConfig loads configuration from a YAML file. Keys missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// ApplyFlags overrides cfg with every flag whose name is in set.
// Flags left at their defaults do not override values read from a file.
func ApplyFlags(cfg *Config, flags Flags, set map[string]bool) *Config {
	merged := *cfg

	if set[FlagKeySeparator] {
		merged.KeySeparator = flags.KeySeparator
	}
	if set[FlagArraySeparator] {
		merged.ArraySeparator = flags.ArraySeparator
	}
	if set[FlagEnumerateArray] {
		merged.EnumerateArray = flags.EnumerateArray
	}
	if set[FlagJSONC] {
		merged.JSONC = flags.JSONC
	}
	if set[FlagDebug] {
		merged.Debug = flags.Debug
	}

	return &merged
}

// LoadConfigWithCLI loads the config file at configPath, or the discovered one
// when configPath is empty, and applies the explicitly set flags on top.
func LoadConfigWithCLI(configPath string, flags Flags, set map[string]bool) (*Config, string, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, configPath, err
		}
		cfg = fileConfig
	}

	return ApplyFlags(cfg, flags, set), configPath, nil
}

// Options returns the flattening options described by c.
func (c *Config) Options() models.Options {
	return models.Options{
		KeySeparator:   c.KeySeparator,
		ArraySeparator: c.ArraySeparator,
		EnumerateArray: c.EnumerateArray,
	}
}
