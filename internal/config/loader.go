package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "newsroom.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Logging.Level, "NEWSROOM_LOG_LEVEL")
	setString(&cfg.Logging.Service, "NEWSROOM_LOG_SERVICE")
	setString(&cfg.Logging.Format, "NEWSROOM_LOG_FORMAT")
	setString(&cfg.Server.Addr, "NEWSROOM_ADDR")

	setString(&cfg.Wire.Transport, "NEWSROOM_TRANSPORT")
	setString(&cfg.Wire.Topic, "NEWSROOM_TOPIC")
	setInt(&cfg.Wire.Buffer, "NEWSROOM_BUFFER")
	setList(&cfg.Wire.ListenAddrs, "NEWSROOM_LISTEN_ADDRS")
	setList(&cfg.Wire.Bootstrap, "NEWSROOM_BOOTSTRAP")
	setString(&cfg.Wire.Rendezvous, "NEWSROOM_RENDEZVOUS")
	setBool(&cfg.Wire.EnableMDNS, "NEWSROOM_MDNS")
	setString(&cfg.Wire.IdentityKeyFile, "NEWSROOM_IDENTITY_KEY")
}

func validate(cfg *Config) error {
	switch cfg.Wire.Transport {
	case TransportMemory, TransportLibp2p:
	default:
		return fmt.Errorf("wire.transport %q is not one of %s, %s", cfg.Wire.Transport, TransportMemory, TransportLibp2p)
	}
	if cfg.Wire.Topic == "" {
		return errors.New("wire.topic is required")
	}
	if cfg.Wire.Buffer < 0 {
		return errors.New("wire.buffer must be >= 0")
	}
	if cfg.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	for _, name := range cfg.Demo.Subscribers {
		if strings.TrimSpace(name) == "" {
			return errors.New("demo.subscribers must not contain empty names")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*dst = out
}
