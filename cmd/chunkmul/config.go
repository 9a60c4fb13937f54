package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the chunkmul configuration file
// (~/.config/chunkmul/config.yaml). Pointer fields distinguish "not set" from
// zero values.
type Config struct {
	Workers   *int `yaml:"workers"`
	ChunkSize *int `yaml:"chunk_size"`
	Size      *int `yaml:"size"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Output    string `yaml:"output"`

	// Server
	ServerAddress string `yaml:"server_address"`
	MaxElements   *int   `yaml:"max_elements"`
	MaxRuns       *int   `yaml:"max_runs"`
}

const envConfigPath = "CHUNKMUL_CONFIG"

func configPath() string {
	if p := os.Getenv(envConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chunkmul", "config.yaml")
}

// LoadConfig reads the config file. A missing or unreadable file yields a
// zero Config.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	cfg, err := readConfig(path)
	if err != nil {
		return Config{}
	}
	return cfg
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyScheduleConfig fills workers, chunk size and matrix size from the
// config file when the corresponding flag was not given.
func applyScheduleConfig(c *cli.Command, cfg Config) {
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.ChunkSize != nil && !c.IsSet("chunk") {
		chunkSize = *cfg.ChunkSize
	}
	if cfg.Size != nil && !c.IsSet("size") {
		size = *cfg.Size
	}
}

func applyOutputConfig(c *cli.Command, cfg Config, output *string) {
	if cfg.Output != "" && !c.IsSet("output") {
		*output = cfg.Output
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxElements, maxRuns *int) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxElements != nil && !c.IsSet("max-elements") {
		*maxElements = *cfg.MaxElements
	}
	if cfg.MaxRuns != nil && !c.IsSet("max-runs") {
		*maxRuns = *cfg.MaxRuns
	}
}
