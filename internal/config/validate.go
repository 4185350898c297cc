package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/raphi011/reposet/internal/schedule"
)

// Validate checks field values that TOML decoding cannot.
func (c *Config) Validate() error {
	if err := ValidatePath(c.RootDir, "root_dir"); err != nil {
		return err
	}
	if err := ValidatePath(c.ListPath, "list_path"); err != nil {
		return err
	}
	if c.Restore.SkipExisting && c.Restore.OverwriteExisting {
		return fmt.Errorf("restore.skip_existing and restore.overwrite_existing are mutually exclusive")
	}
	if c.ProbeTimeout != "" {
		d, err := time.ParseDuration(c.ProbeTimeout)
		if err != nil {
			return fmt.Errorf("invalid probe_timeout %q: %w", c.ProbeTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid probe_timeout %q: must be positive", c.ProbeTimeout)
		}
	}
	if err := ValidateSchedule(c.Sync.Schedule); err != nil {
		return err
	}
	return validateExcludePatterns(c.Exclude, "")
}

// ValidateSchedule checks a cron spec. Empty is allowed.
func ValidateSchedule(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	if _, err := schedule.Parse(spec); err != nil {
		return fmt.Errorf("sync.schedule: %w", err)
	}
	return nil
}

// validateExcludePatterns rejects blank or negated patterns, which would
// silently re-include excluded trees.
func validateExcludePatterns(patterns []string, contextInfo string) error {
	for i, pat := range patterns {
		var problem string
		switch {
		case strings.TrimSpace(pat) == "":
			problem = "is empty"
		case strings.HasPrefix(strings.TrimSpace(pat), "!"):
			problem = "must not be negated"
		}
		if problem == "" {
			continue
		}
		if contextInfo != "" {
			return fmt.Errorf("invalid exclude[%d] %q in %s: %s", i, pat, contextInfo, problem)
		}
		return fmt.Errorf("invalid exclude[%d] %q: %s", i, pat, problem)
	}
	return nil
}
