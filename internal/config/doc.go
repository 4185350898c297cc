// Package config handles loading and validation of reposet configuration.
//
// Configuration is read from ~/.config/reposet/config.toml with environment
// variable overrides for directory settings.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags (applied by the caller)
//   - .reposet.toml in the directory being scanned or synced
//   - REPOSET_ROOT_DIR and REPOSET_LIST_PATH env vars
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - root_dir: Directory synced when none is given (must be absolute or ~/...)
//   - list_path: Inventory file; its extension selects JSON, YAML or TOML
//   - remote_name: Remote recorded for each repository (default: "origin")
//   - probe_timeout: Per-remote ls-remote timeout (default: "10s")
//   - system_name: Name matched against entry system filters (default: hostname)
//   - exclude: gitignore-style patterns skipped during scans
//   - theme: color preset for tables and progress (default, dracula, nord, none)
//
// # Secrets
//
// publish.token may reference environment variables as ${VAR}. A .env file
// loaded with [LoadDotEnv] can supply them; GITHUB_TOKEN is used when no
// token is configured.
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
