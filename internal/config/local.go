package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-root override file read from the
// directory being scanned or synced.
const LocalConfigFileName = ".reposet.toml"

// LocalConfig holds per-root overrides from .reposet.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	ListPath   string       `toml:"list_path"`
	RemoteName string       `toml:"remote_name"`
	SkipProbe  *bool        `toml:"skip_probe"`
	Exclude    []string     `toml:"exclude"` // appended to global
	Restore    LocalRestore `toml:"restore"`
}

// LocalRestore holds local restore policy overrides
type LocalRestore struct {
	SkipExisting      *bool `toml:"skip_existing"`
	OverwriteExisting *bool `toml:"overwrite_existing"`
}

// LoadLocal reads .reposet.toml from the given root directory.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(root string) (*LocalConfig, error) {
	configFile := filepath.Join(root, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	// Relative list paths are resolved against the root.
	if local.ListPath != "" && local.ListPath[0] != '~' && !filepath.IsAbs(local.ListPath) {
		local.ListPath = filepath.Join(root, local.ListPath)
	}

	if isSet(local.Restore.SkipExisting) && isSet(local.Restore.OverwriteExisting) {
		return nil, fmt.Errorf("restore.skip_existing and restore.overwrite_existing are mutually exclusive in %s", configFile)
	}
	if err := validateExcludePatterns(local.Exclude, configFile); err != nil {
		return nil, err
	}

	return &local, nil
}

func isSet(b *bool) bool {
	return b != nil && *b
}

// defaultLocalConfig is the template for reposet config init --local
const defaultLocalConfig = `# reposet local config (per-root overrides)
# Place this file at the root of a directory you scan or sync.
# Settings here override the global config for this directory only.

# Inventory for this directory; relative paths resolve against this directory
# list_path = "repos.yaml"

# remote_name = "upstream"
# skip_probe = true

# Patterns here are added to the global exclude patterns
# exclude = ["vendor"]

# [restore]
# skip_existing = true
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
