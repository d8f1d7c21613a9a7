package engine

import (
	"os"

	"gopkg.in/yaml.v3"
)

// CollectionBinding configures one named collection to be bound to a
// collection manager URI at connection setup, e.g. name "ARGS" bound
// to uri "kv://requests".
type CollectionBinding struct {
	Name string `yaml:"name"`
	URI  string `yaml:"uri"`
}

// KVConfig selects and configures the default KV store backend.
type KVConfig struct {
	// Backend is one of "filesystem", "bolt", "redis".
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir"`
	Addr    string `yaml:"addr"` // redis only
	// EncryptionKey, if set, wraps the backend in an AES-256-GCM
	// EncryptedBackend. It must be exactly 32 bytes; any other
	// non-empty length makes New fail with Invalid.
	EncryptionKey []byte `yaml:"encryption_key"`
}

// Config is the static configuration an Engine is built from. It is
// read once at startup; there is no hot-reload.
type Config struct {
	// Phases lists the pipeline phase names, in host-authoritative
	// execution order (e.g. "request_headers", "request_body",
	// "response_headers", "response_body", "logging").
	Phases []string `yaml:"phases"`

	KV          KVConfig            `yaml:"kv"`
	Collections []CollectionBinding `yaml:"collections"`
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
