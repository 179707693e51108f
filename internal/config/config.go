// Package config loads the starview configuration file with sane defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config carries OAuth application settings and local file locations.
type Config struct {
	ClientID     string
	ClientSecret string
	Hostname     string // OAuth host, usually "github.com"
	CachePath    string // sqlite cache file
	CredPath     string // sealed credential record
	KeyPath      string // sealing key file
}

const (
	defaultConfigPath = "~/.config/starview/config.toml"
	defaultHostname   = "github.com"
)

// Load parses the config file at path (or the default location when empty),
// falling back to defaults for anything missing. A missing file is not an
// error; client id/secret may still arrive via flags.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Hostname: defaultHostname}
	cfg.applyDirDefaults()

	b, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		Hostname     string `toml:"hostname"`
		CachePath    string `toml:"cache_path"`
		CredPath     string `toml:"cred_path"`
		KeyPath      string `toml:"key_path"`
	}
	if err := toml.Unmarshal(b, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.ClientID); v != "" {
		cfg.ClientID = v
	}
	if v := strings.TrimSpace(raw.ClientSecret); v != "" {
		cfg.ClientSecret = v
	}
	if v := strings.TrimSpace(raw.Hostname); v != "" {
		cfg.Hostname = v
	}
	if v := strings.TrimSpace(raw.CachePath); v != "" {
		cfg.CachePath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.CredPath); v != "" {
		cfg.CredPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.KeyPath); v != "" {
		cfg.KeyPath = mustExpand(v)
	}
	return cfg, nil
}

func (c *Config) applyDirDefaults() {
	dir := dataDir()
	if c.CachePath == "" {
		c.CachePath = filepath.Join(dir, "cache.db")
	}
	if c.CredPath == "" {
		c.CredPath = filepath.Join(dir, "credential.json")
	}
	if c.KeyPath == "" {
		c.KeyPath = filepath.Join(dir, "cred.key")
	}
}

func dataDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "starview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "starview")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

func mustExpand(path string) string {
	p, err := expandPath(path)
	if err != nil {
		return path
	}
	return p
}
