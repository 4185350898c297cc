package config

// MergeLocal merges a per-root config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	// Fields without a local counterpart are inherited as-is.
	merged := *global

	if local.ListPath != "" {
		merged.ListPath = local.ListPath
	}
	if local.RemoteName != "" {
		merged.RemoteName = local.RemoteName
	}
	if local.SkipProbe != nil {
		merged.SkipProbe = *local.SkipProbe
	}

	// A local policy flag replaces the global policy entirely, so a local
	// skip_existing cannot combine with a global overwrite_existing.
	if local.Restore.SkipExisting != nil || local.Restore.OverwriteExisting != nil {
		merged.Restore = RestoreConfig{}
		if local.Restore.SkipExisting != nil {
			merged.Restore.SkipExisting = *local.Restore.SkipExisting
		}
		if local.Restore.OverwriteExisting != nil {
			merged.Restore.OverwriteExisting = *local.Restore.OverwriteExisting
		}
	}

	// Exclude patterns append with dedup
	if len(local.Exclude) > 0 {
		merged.Exclude = appendUnique(global.Exclude, local.Exclude)
	}

	return &merged
}

// ForRoot loads root/.reposet.toml and merges it into global.
func ForRoot(global *Config, root string) (*Config, error) {
	local, err := LoadLocal(root)
	if err != nil {
		return nil, err
	}
	merged := MergeLocal(global, local)
	if local != nil && local.ListPath != "" {
		p, err := expandPath(merged.ListPath)
		if err != nil {
			return nil, err
		}
		merged.ListPath = p
	}
	return merged, nil
}

// appendUnique appends items from extra to base, skipping duplicates.
// Returns a new slice (never mutates base).
func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}

	result := make([]string, len(base))
	copy(result, base)

	for _, v := range extra {
		if !seen[v] {
			result = append(result, v)
			seen[v] = true
		}
	}

	return result
}
