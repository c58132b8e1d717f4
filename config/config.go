// Package config loads the service configuration from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when no path is given explicitly.
const EnvConfigPath = "STEGX_CONFIG"

// Config holds the complete service configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Stego   StegoConfig   `toml:"stego" yaml:"stego"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port string `toml:"port" yaml:"port"`

	// AllowedOrigins are the CORS origins permitted to call the API.
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`

	// MaxUploadMB bounds the multipart form size.
	MaxUploadMB int64 `toml:"max_upload_mb" yaml:"max_upload_mb"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" yaml:"format"`
}

// StegoConfig tunes the codec and the files the service writes.
type StegoConfig struct {
	// LegacyStop ends image/audio messages at the first 0xFF byte instead of
	// the full 16-bit delimiter.
	LegacyStop bool `toml:"legacy_stop" yaml:"legacy_stop"`

	// PSNRThreshold in dB below which an embed is logged as perceptible.
	PSNRThreshold float64 `toml:"psnr_threshold" yaml:"psnr_threshold"`

	// ImageFormat is the lossless output format: "png" or "bmp".
	ImageFormat string `toml:"image_format" yaml:"image_format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxUploadMB:    32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Stego: StegoConfig{
			PSNRThreshold: 40,
			ImageFormat:   "png",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path falls back to $STEGX_CONFIG; no file at all is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	return nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: invalid port %q", c.Server.Port))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("server.allowed_origins: at least one origin is required"))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb: must be positive"))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	switch strings.ToLower(c.Stego.ImageFormat) {
	case "png", "bmp":
	default:
		errs = append(errs, fmt.Errorf("stego.image_format: must be png or bmp, got %q", c.Stego.ImageFormat))
	}
	if c.Stego.PSNRThreshold < 0 {
		errs = append(errs, fmt.Errorf("stego.psnr_threshold: must not be negative"))
	}

	return errors.Join(errs...)
}

// MaxUploadBytes returns the multipart limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
