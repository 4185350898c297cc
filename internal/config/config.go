package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// RestoreConfig holds the existing-directory policy for restore and sync.
type RestoreConfig struct {
	SkipExisting      bool `toml:"skip_existing"`
	OverwriteExisting bool `toml:"overwrite_existing"`
}

// PublishConfig holds gist publishing settings.
type PublishConfig struct {
	GistID   string `toml:"gist_id"`
	Filename string `toml:"filename"` // gist file name, defaults to the inventory's base name
	Token    string `toml:"token"`    // may reference ${VAR}
	Public   bool   `toml:"public"`
	APIURL   string `toml:"api_url"` // GitHub Enterprise API endpoint; empty for github.com
}

// SyncConfig holds periodic sync settings.
type SyncConfig struct {
	Schedule string `toml:"schedule"` // cron spec or @every duration
}

// Config holds the reposet configuration
type Config struct {
	RootDir      string        `toml:"root_dir"`
	ListPath     string        `toml:"list_path"`
	RemoteName   string        `toml:"remote_name"`
	GitPath      string        `toml:"git_path"`
	ProbeTimeout string        `toml:"probe_timeout"`
	SkipProbe    bool          `toml:"skip_probe"`
	SystemName   string        `toml:"system_name"`
	Exclude      []string      `toml:"exclude"`
	Theme        string        `toml:"theme"` // preset name, see ui/styles
	Restore      RestoreConfig `toml:"restore"`
	Publish      PublishConfig `toml:"publish"`
	Sync         SyncConfig    `toml:"sync"`
}

// Defaults for empty config values.
const (
	DefaultRemoteName   = "origin"
	DefaultGitPath      = "git"
	DefaultProbeTimeout = "10s"
)

// Environment variables overriding file values.
const (
	EnvRootDir     = "REPOSET_ROOT_DIR"
	EnvListPath    = "REPOSET_LIST_PATH"
	EnvGitHubToken = "GITHUB_TOKEN"
)

// Default returns the default configuration
func Default() Config {
	return Config{
		RemoteName:   DefaultRemoteName,
		GitPath:      DefaultGitPath,
		ProbeTimeout: DefaultProbeTimeout,
		SystemName:   hostname(),
	}
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return ""
	}
	return name
}

// ProbeTimeoutDuration returns the parsed probe timeout. Load has already
// validated it; an invalid value falls back to the default.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultProbeTimeout)
	}
	return d
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	// Allow ~ paths
	if path[0] == '~' {
		return nil
	}
	// Must be absolute
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// ExpandPath expands a leading ~ in a user-supplied path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Path returns the default config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "reposet", "config.toml"), nil
}

// Load reads config from ~/.config/reposet/config.toml
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		applyEnv(&cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from path, applies environment overrides and
// validates the result. A missing file yields the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Default(), fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	if err := cfg.expandPaths(); err != nil {
		return Default(), err
	}
	cfg.fillDefaults()
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables and expands ${VAR} references in
// the publish token.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvRootDir); v != "" {
		cfg.RootDir = v
	}
	if v := os.Getenv(EnvListPath); v != "" {
		cfg.ListPath = v
	}
	if strings.Contains(cfg.Publish.Token, "$") {
		cfg.Publish.Token = os.ExpandEnv(cfg.Publish.Token)
	}
	if cfg.Publish.Token == "" {
		cfg.Publish.Token = os.Getenv(EnvGitHubToken)
	}
}

func (c *Config) expandPaths() error {
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"root_dir", &c.RootDir},
		{"list_path", &c.ListPath},
	} {
		expanded, err := expandPath(*f.val)
		if err != nil {
			return fmt.Errorf("expand %s: %w", f.name, err)
		}
		*f.val = expanded
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.RemoteName == "" {
		c.RemoteName = DefaultRemoteName
	}
	if c.GitPath == "" {
		c.GitPath = DefaultGitPath
	}
	if c.ProbeTimeout == "" {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.SystemName == "" {
		c.SystemName = hostname()
	}
}

const defaultConfig = `# reposet configuration

# Directory scanned and restored into by "reposet sync" when no directory
# argument is given. Must be an absolute path or start with ~.
# Overridden by the REPOSET_ROOT_DIR environment variable.
# root_dir = "~/src"

# Inventory file used by sync, list and publish. The extension selects the
# format: .json, .yaml/.yml or .toml.
# Overridden by the REPOSET_LIST_PATH environment variable.
# list_path = "~/Dropbox/repos.json"

# Remote whose URL is recorded for each repository
remote_name = "origin"

# git executable used for clone and ls-remote
git_path = "git"

# Timeout for each "git ls-remote" reachability probe
probe_timeout = "10s"

# Skip reachability probing during scans (records are left "unknown")
# skip_probe = false

# Name matched against each entry's system_filter. Defaults to the hostname.
# system_name = "work-laptop"

# gitignore-style patterns for directories never descended into
# exclude = ["node_modules", "/archive"]

# Color theme for tables and progress: default, dracula, nord or none.
# NO_COLOR and non-terminal output disable colors regardless.
# theme = "default"

# What to do when a repository's target directory already exists.
# With neither set, existing directories are skipped with a warning.
# [restore]
# skip_existing = true        # skip quietly
# overwrite_existing = false  # delete and re-clone

# Publish the inventory to a GitHub gist ("reposet publish", "sync --publish")
# [publish]
# gist_id = ""            # empty creates a new gist on first publish
# filename = "repos.json" # defaults to the inventory's file name
# token = "${GITHUB_TOKEN}"
# public = false
# api_url = "https://github.example.com/api/v3/"

# Run sync periodically with "reposet sync --schedule"
# [sync]
# schedule = "@every 1h"
`

// DefaultConfig returns the default configuration file content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at path, or the default location
// when path is empty. If force is true, overwrites existing file.
// Returns the path to the created file
func Init(path string, force bool) (string, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return "", err
		}
		path = p
	}

	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
