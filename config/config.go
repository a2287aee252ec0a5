// Package config manages the YAML configuration of picstream.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	set "github.com/deckarep/golang-set/v2"
	"github.com/m-manu/picstream/remote"
	"gopkg.in/yaml.v3"
)

// PasswordEnvVar overrides the password of the configuration file
const PasswordEnvVar = "PICSTREAM_PASSWORD"

const localConfigFile = "picstream.yaml"

// Config holds all configuration options for picstream
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	Share      string `yaml:"share"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password,omitempty"`
	KnownHosts string `yaml:"known_hosts,omitempty"`

	Workers       int           `yaml:"workers"`
	Recursive     bool          `yaml:"recursive"`
	Exclude       []string      `yaml:"exclude"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Internal: file the configuration was read from, empty if none
	configPath string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Workers:       1,
		Exclude:       []string{"@eaDir", "Thumbs.db", "lost+found", "$RECYCLE.BIN"},
		WatchDebounce: 2 * time.Second,
	}
}

// GetConfigDir returns the config directory path
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/picstream"
	}
	return filepath.Join(home, ".config", "picstream")
}

// GetConfigPath returns the full path to the config file
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Load reads the configuration. An explicitly given file must exist; otherwise
// ~/.config/picstream/config.yaml and then ./picstream.yaml are tried, and
// defaults are used when neither exists.
func Load(explicitPath string) (*Config, error) {
	cfg := DefaultConfig()
	cfgPath := explicitPath
	if cfgPath == "" {
		for _, candidate := range []string{GetConfigPath(), localConfigFile} {
			if _, err := os.Stat(candidate); err == nil {
				cfgPath = candidate
				break
			}
		}
	}
	if cfgPath != "" {
		if err := cfg.loadFromFile(cfgPath); err != nil {
			return nil, err
		}
		cfg.configPath = cfgPath
	}
	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("couldn't read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("couldn't parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if password := getenv(PasswordEnvVar); password != "" {
		c.Password = password
	}
}

// Path returns the file the configuration was read from
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks that the configuration can be used to connect
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Endpoint) == "" {
		errs = append(errs, errors.New("endpoint is not set"))
	} else if _, err := remote.ParseEndpoint(c.Endpoint); err != nil {
		errs = append(errs, fmt.Errorf("endpoint %q: %w", c.Endpoint, err))
	}
	if strings.TrimSpace(c.Share) == "" {
		errs = append(errs, errors.New("share is not set"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, not %d", c.Workers))
	}
	if c.WatchDebounce <= 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must be positive, not %v", c.WatchDebounce))
	}
	return errors.Join(errs...)
}

// Remote returns what a session resolver needs
func (c *Config) Remote() remote.Config {
	return remote.Config{
		Endpoint: c.Endpoint,
		Share:    c.Share,
		Credentials: remote.Credentials{
			Username:       c.Username,
			Password:       c.Password,
			KnownHostsFile: c.KnownHosts,
		},
	}
}

// ExcludedNames returns the names skipped when looking for media
func (c *Config) ExcludedNames() set.Set[string] {
	return set.NewThreadUnsafeSet(c.Exclude...)
}
