package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Map       MapConfig       `yaml:"map"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StorageConfig struct {
	// Driver selects the snapshot medium: "sqlite" or "file".
	Driver string `yaml:"driver"`
	// Path is the database file (sqlite) or the slot directory (file).
	Path string `yaml:"path"`
}

type MapConfig struct {
	// DefaultZoom is the zoom level used when panning to a workout.
	DefaultZoom int `yaml:"default_zoom"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Default returns the zero-config setup: plain HTTP on localhost, SQLite
// snapshots next to the binary, Leaflet's default city zoom.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Driver: "sqlite", Path: "waymark.db"},
		Map:     MapConfig{DefaultZoom: 13},
		Tailscale: TailscaleConfig{
			Hostname: "waymark",
			StateDir: "tsnet-state",
		},
	}
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error — defaults apply. Env vars use
// the prefix WAYMARK_ and underscore-separated paths:
//
//	WAYMARK_SERVER_HOST, WAYMARK_SERVER_PORT,
//	WAYMARK_STORAGE_DRIVER, WAYMARK_STORAGE_PATH,
//	WAYMARK_MAP_ZOOM,
//	WAYMARK_TS_ENABLED, WAYMARK_TS_HOSTNAME, WAYMARK_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WAYMARK_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("WAYMARK_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WAYMARK_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("WAYMARK_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("WAYMARK_MAP_ZOOM"); v != "" {
		if zoom, err := strconv.Atoi(v); err == nil {
			cfg.Map.DefaultZoom = zoom
		}
	}
	if v := os.Getenv("WAYMARK_TS_ENABLED"); v != "" {
		cfg.Tailscale.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("WAYMARK_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("WAYMARK_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "file" {
		return fmt.Errorf("storage.driver must be sqlite or file, got %q", c.Storage.Driver)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Map.DefaultZoom < 1 || c.Map.DefaultZoom > 19 {
		return fmt.Errorf("map.default_zoom must be between 1 and 19, got %d", c.Map.DefaultZoom)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
