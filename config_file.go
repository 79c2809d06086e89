package credauth

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of an engine configuration file. Only the
// fields an operator plausibly sets from the outside are exposed; the signing
// key arrives as a separate file path so the YAML itself stays free of key
// material.
type fileConfig struct {
	Policy struct {
		DefaultCredential string `yaml:"default_credential"`
		MinPasswordLength int    `yaml:"min_password_length"`
	} `yaml:"policy"`
	Entropy struct {
		AllowInsecureFallback bool `yaml:"allow_insecure_fallback"`
	} `yaml:"entropy"`
	Token struct {
		Enabled        bool   `yaml:"enabled"`
		SigningKeyFile string `yaml:"signing_key_file"`
		Issuer         string `yaml:"issuer"`
		// Durations are strings ("10m", "30s"); yaml.v3 has no native
		// time.Duration decoding.
		TTL    string `yaml:"ttl"`
		Leeway string `yaml:"leeway"`
	} `yaml:"token"`
	Audit struct {
		Enabled    bool `yaml:"enabled"`
		BufferSize int  `yaml:"buffer_size"`
		DropIfFull bool `yaml:"drop_if_full"`
	} `yaml:"audit"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// ParseConfig decodes YAML configuration on top of the built-in defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := defaultConfig()

	var file fileConfig
	file.Audit.BufferSize = cfg.Audit.BufferSize
	file.Audit.DropIfFull = cfg.Audit.DropIfFull
	file.Metrics.Enabled = cfg.Metrics.Enabled
	file.Policy.MinPasswordLength = cfg.Policy.MinPasswordLength

	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Policy.DefaultCredential = file.Policy.DefaultCredential
	cfg.Policy.MinPasswordLength = file.Policy.MinPasswordLength
	cfg.Entropy.AllowInsecureFallback = file.Entropy.AllowInsecureFallback
	cfg.Token.Enabled = file.Token.Enabled
	cfg.Token.Issuer = file.Token.Issuer
	cfg.Audit.Enabled = file.Audit.Enabled
	cfg.Audit.BufferSize = file.Audit.BufferSize
	cfg.Audit.DropIfFull = file.Audit.DropIfFull
	cfg.Metrics.Enabled = file.Metrics.Enabled

	if file.Token.TTL != "" {
		ttl, err := time.ParseDuration(file.Token.TTL)
		if err != nil {
			return Config{}, fmt.Errorf("parse token ttl: %w", err)
		}
		cfg.Token.TTL = ttl
	}
	if file.Token.Leeway != "" {
		leeway, err := time.ParseDuration(file.Token.Leeway)
		if err != nil {
			return Config{}, fmt.Errorf("parse token leeway: %w", err)
		}
		cfg.Token.Leeway = leeway
	}

	if file.Token.SigningKeyFile != "" {
		key, err := os.ReadFile(file.Token.SigningKeyFile)
		if err != nil {
			return Config{}, fmt.Errorf("read signing key: %w", err)
		}
		cfg.Token.SigningKey = key
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}
