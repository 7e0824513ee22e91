package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Index   IndexConfig   `yaml:"index"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`     // HTTP Listen Address (e.g. :8080)
	TCPAddr string `yaml:"tcp_addr"` // TCP Listen Address (e.g. :9090)
}

type StorageConfig struct {
	Path        string `yaml:"path"`
	Backend     string `yaml:"backend"` // sqlite | json
	Journal     bool   `yaml:"journal"`
	SaveOnClose bool   `yaml:"save_on_close"`

	// Background checkpoint: once the journal passes CheckpointBytes a
	// snapshot is written and the journal cleared. 0 disables it.
	CheckpointBytes    int64         `yaml:"checkpoint_bytes"`
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
}

// IndexConfig toggles the prefix trees. Both are fixed for the lifetime of a store.
type IndexConfig struct {
	NamePrefix  bool `yaml:"name_prefix"`
	PhonePrefix bool `yaml:"phone_prefix"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:    ":8080",
			TCPAddr: ":9090",
		},
		Storage: StorageConfig{
			Path:        "contact_data",
			Backend:     BackendSQLite,
			Journal:     true,
			SaveOnClose: true,

			CheckpointBytes:    1 << 20,
			CheckpointInterval: 5 * time.Second,
		},
		Index: IndexConfig{
			NamePrefix:  true,
			PhonePrefix: true,
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/contactdb.yaml", "contactdb.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, err
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "contact_data"
	}
	switch strings.ToLower(cfg.Storage.Backend) {
	case BackendJSON:
		cfg.Storage.Backend = BackendJSON
	default:
		cfg.Storage.Backend = BackendSQLite
	}
	if cfg.Storage.CheckpointInterval <= 0 {
		cfg.Storage.CheckpointInterval = 5 * time.Second
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.TCPAddr == "" {
		cfg.Server.TCPAddr = ":9090"
	}
}
