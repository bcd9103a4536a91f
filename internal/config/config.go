// Package config loads rconcli defaults from a YAML file. Command line
// flags always override file values; the file just saves retyping the server
// address and password for a frequently used server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the file-configurable settings.
type Config struct {
	// Address is the RCON server in host:port form.
	Address string `yaml:"address"`

	// Password is the RCON password. Storing it here keeps it out of shell
	// history, at the cost of a plaintext file; keep the file mode tight.
	Password string `yaml:"password"`

	// TimeoutSeconds bounds connection establishment.
	TimeoutSeconds int `yaml:"timeout"`

	// Format selects the output format: "text" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in defaults used when no file or flag says
// otherwise.
func Default() *Config {
	return &Config{
		Address:        "localhost:25575",
		TimeoutSeconds: 5,
		Format:         "text",
	}
}

// DefaultPath returns the conventional config file location,
// $XDG_CONFIG_HOME/rconcli/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rconcli", "config.yaml")
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error; the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("parsing %s: timeout must be greater than 0", path)
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("parsing %s: unknown format %q", path, cfg.Format)
	}

	return cfg, nil
}

// Timeout returns the connect timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
