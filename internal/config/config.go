// Package config loads the application configuration from defaults, an
// optional config file under the state directory, environment variables
// and command line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of all environment overrides, for
	// example POLARIS_PORT.
	EnvPrefix = "POLARIS"

	stateDirName   = ".polaris"
	configFileName = "config"
)

// EngineConfig holds per-engine CLI settings.
type EngineConfig struct {
	// Command is the executable to launch, resolved from PATH when
	// empty.
	Command string `mapstructure:"command"`
}

// Config holds the application configuration.
type Config struct {
	Host          string                  `mapstructure:"host"`
	Port          int                     `mapstructure:"port"`
	Workspace     string                  `mapstructure:"workspace"`
	NoBrowser     bool                    `mapstructure:"no_browser"`
	DefaultEngine string                  `mapstructure:"default_engine"`
	LogLevel      string                  `mapstructure:"log_level"`
	LogToFile     bool                    `mapstructure:"log_to_file"`
	Engines       map[string]EngineConfig `mapstructure:"engines"`
}

// New returns a viper instance with defaults, env binding and the
// config file location set up. Callers may bind flags onto it before
// Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 0)
	v.SetDefault("workspace", "")
	v.SetDefault("no_browser", false)
	v.SetDefault("default_engine", "claude")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_to_file", true)
	v.SetDefault("engines.claude.command", "claude")
	v.SetDefault("engines.iflow.command", "iflow")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	if dir, err := StateDir(); err == nil {
		v.AddConfigPath(dir)
	}
	return v
}

// Load reads the config file if present and materializes the Config. A
// port of zero is replaced with a free one.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Workspace != "" {
		abs, err := filepath.Abs(cfg.Workspace)
		if err != nil {
			return nil, fmt.Errorf("invalid workspace path: %w", err)
		}
		cfg.Workspace = abs
	}
	if cfg.Port == 0 {
		port, err := findAvailablePort()
		if err != nil {
			return nil, fmt.Errorf("failed to find available port: %w", err)
		}
		cfg.Port = port
	}
	return cfg, nil
}

// EngineCommand returns the configured executable for an engine, with
// the engine name itself as fallback.
func (c *Config) EngineCommand(name string) string {
	if ec, ok := c.Engines[name]; ok && ec.Command != "" {
		return ec.Command
	}
	return name
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	return fmt.Sprintf("http://%s", c.Addr())
}

// StateDir returns the per-user state directory, creating it if needed.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, stateDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// RecentsPath returns the location of the recent workspaces file.
func RecentsPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "recents.json"), nil
}

// LogPath returns the location of the rotated log file.
func LogPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "polaris.log"), nil
}

// findAvailablePort asks the kernel for a free TCP port.
func findAvailablePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port, nil
}
