package config

import (
	"fmt"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v2"
)

const (
	EnvCatalog = "CRYPTOSCAN_CATALOG"
	EnvThreads = "CRYPTOSCAN_THREADS"

	DefaultThreads = 1
	DefaultFormat  = "json"
)

// Config is the global YAML configuration of cryptoscan.
type Config struct {
	Logger Logger `yaml:"logger"`
	Engine Engine `yaml:"engine"`
	Report Report `yaml:"report"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// Engine configures catalog selection and scan parallelism.
type Engine struct {
	CatalogPath string `yaml:"catalog_path"`
	Threads     int    `yaml:"threads"`
}

// Report configures rendering and the severity gate.
type Report struct {
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	FailOn string `yaml:"fail_on"`
}

// LoadConfig reads the YAML file at path. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		default:
			if err := yaml.UnmarshalStrict(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyEnv lets environment variables override file values.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvCatalog); v != "" {
		cfg.Engine.CatalogPath = v
	}
	if v := os.Getenv(EnvThreads); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvThreads, err)
		}
		cfg.Engine.Threads = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	cfg.Engine.Threads = SetThen(cfg.Engine.Threads, DefaultThreads)
	cfg.Report.Format = SetThen(cfg.Report.Format, DefaultFormat)
}
