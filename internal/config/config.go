// Package config loads the flowcanvas configuration file.
//
// The file lives at $XDG_CONFIG_HOME/flowcanvas/config.toml (falling back
// to ~/.config/flowcanvas/config.toml). A missing file is not an error;
// every setting has a default. Command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// AppName names the configuration and cache directories.
const AppName = "flowcanvas"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full configuration.
type Config struct {
	Templates Templates `toml:"templates"`
	Cache     Cache     `toml:"cache"`
	Editor    Editor    `toml:"editor"`
	Server    Server    `toml:"server"`
}

// Templates configures where block-type templates come from. The built-in
// templates are always available.
type Templates struct {
	Dir string `toml:"dir"` // directory of extra <type>.toml descriptors
	URL string `toml:"url"` // template server base URL
}

// Cache configures the template cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// Editor configures editing behaviour.
type Editor struct {
	AnchorY float64 `toml:"anchor_y"`
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("24h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Cache: Cache{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			Prefix:    AppName + ":",
			TTL:       Duration{24 * time.Hour},
		},
		Editor: Editor{
			AnchorY: 30,
			Width:   2000,
			Height:  1200,
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parse config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Editor.Width <= 0 || c.Editor.Height <= 0 {
		return fmt.Errorf("editor: surface size must be positive")
	}
	return nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := dir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/flowcanvas/).
func CacheDir() (string, error) {
	return dir("XDG_CACHE_HOME", ".cache")
}

func dir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
