// Package config provides configuration types, defaults and loading for gitguru.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// RepoConfigName is the per-repository config file looked up in the work tree root.
const RepoConfigName = ".gitguru.yaml"

// EnvPrefix prefixes environment overrides, e.g. GITGURU_PRIVILEGED_OWNER.
const EnvPrefix = "GITGURU"

// Config holds all configuration options for gitguru.
type Config struct {
	PrivilegedOwner   string        `mapstructure:"privileged_owner" yaml:"privileged_owner"`
	Remote            string        `mapstructure:"remote" yaml:"remote"`
	AutoCommitMessage string        `mapstructure:"auto_commit_message" yaml:"auto_commit_message"`
	ShowTree          bool          `mapstructure:"show_tree" yaml:"show_tree"`
	HashLength        int           `mapstructure:"hash_length" yaml:"hash_length"`
	Color             bool          `mapstructure:"color" yaml:"color"`
	Log               LogConfig     `mapstructure:"log" yaml:"log"`
	Tracing           TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Level   string `mapstructure:"level" yaml:"level"` // debug, info, warn, error
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// TracingConfig holds OpenTelemetry options.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Exporter string `mapstructure:"exporter" yaml:"exporter"` // stdout or otlp
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		PrivilegedOwner:   "cto",
		Remote:            "origin",
		AutoCommitMessage: "Commit before merge",
		ShowTree:          true,
		HashLength:        7,
		Color:             true,
		Log: LogConfig{
			Enabled: true,
			Level:   "info",
		},
		Tracing: TracingConfig{
			Exporter: "stdout",
			Endpoint: "localhost:4317",
		},
	}
}

var ownerPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error
	if !ownerPattern.MatchString(c.PrivilegedOwner) {
		errs = append(errs, fmt.Errorf("privileged_owner %q must be lowercase letters and digits", c.PrivilegedOwner))
	}
	if strings.TrimSpace(c.Remote) == "" {
		errs = append(errs, errors.New("remote is required"))
	}
	if strings.TrimSpace(c.AutoCommitMessage) == "" {
		errs = append(errs, errors.New("auto_commit_message is required"))
	}
	if c.HashLength < 4 || c.HashLength > 40 {
		errs = append(errs, fmt.Errorf("hash_length %d must be between 4 and 40", c.HashLength))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Tracing.Exporter {
	case "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter %q must be stdout or otlp", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}

// DefaultPath returns $XDG_CONFIG_HOME/gitguru/config.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "gitguru", "config.yaml"), nil
}

// LoadOptions selects where Load looks for a config file.
type LoadOptions struct {
	// Path is an explicit config file; it must exist.
	Path string
	// RepoDir is searched for RepoConfigName before the user config.
	RepoDir string
}

// Load reads the effective configuration: defaults, then the first config
// file found, then GITGURU_* environment variables. It returns the file
// that was read, or "" when only defaults and environment applied.
func Load(opts LoadOptions) (Config, string, error) {
	v := viper.New()
	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return Config{}, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", fmt.Errorf("invalid config: %w", err)
	}
	return cfg, path, nil
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.Path != "" {
		if _, err := os.Stat(opts.Path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.Path, nil
	}

	var candidates []string
	if opts.RepoDir != "" {
		candidates = append(candidates, filepath.Join(opts.RepoDir, RepoConfigName))
	}
	if p, err := DefaultPath(); err == nil {
		candidates = append(candidates, p)
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// setDefaults registers every key so that environment overrides apply even
// when no config file sets them.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("privileged_owner", d.PrivilegedOwner)
	v.SetDefault("remote", d.Remote)
	v.SetDefault("auto_commit_message", d.AutoCommitMessage)
	v.SetDefault("show_tree", d.ShowTree)
	v.SetDefault("hash_length", d.HashLength)
	v.SetDefault("color", d.Color)
	v.SetDefault("log.enabled", d.Log.Enabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# gitguru configuration

# Owner whose hotfix branches omit the description segment,
# e.g. 0.0.2/cto/hotfix. Used by cto-hotfix and cto-hotfix-push.
privileged_owner: cto

# Remote that push and cto-hotfix-push publish to
remote: origin

# Message for changes committed on the target branch before a merge
auto_commit_message: "Commit before merge"

# Print the branch tree before and after every command that changes branches
show_tree: true

# Number of commit hash characters shown in the tree
hash_length: 7

# Colored output (also disabled by NO_COLOR)
color: true

# Logging
log:
  enabled: true  # JSON log under $XDG_STATE_HOME/gitguru/gitguru.log
  level: info    # debug, info, warn, error
  # path: /tmp/gitguru.log

# Tracing (OpenTelemetry spans around every git command)
tracing:
  enabled: false
  exporter: stdout          # stdout or otlp
  endpoint: localhost:4317  # OTLP gRPC endpoint

# Every key can be overridden from the environment, e.g.
#   GITGURU_PRIVILEGED_OWNER=lead
#   GITGURU_LOG_LEVEL=debug
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist. An existing file is left untouched.
func WriteDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file %s already exists", configPath)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
