package record

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchesSystem reports whether the record should be synced on the machine
// called system. The filter is a comma-separated list of glob patterns;
// a "!" prefix marks an exclusion, and exclusions win. With at least one
// inclusion pattern the name must match one of them. An empty filter or
// "*" matches every system. Matching ignores case.
func (r Record) MatchesSystem(system string) bool {
	return MatchFilter(r.SystemFilter, system)
}

// MatchFilter applies a system filter expression to a machine name.
func MatchFilter(filter, system string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == "*" {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(system))

	var includes, excludes []string
	for _, p := range strings.Split(filter, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "" || p == "!":
		case strings.HasPrefix(p, "!"):
			excludes = append(excludes, strings.TrimSpace(p[1:]))
		default:
			includes = append(includes, p)
		}
	}

	for _, p := range excludes {
		if globMatch(p, name) {
			return false
		}
	}
	if len(includes) == 0 {
		return true
	}
	for _, p := range includes {
		if globMatch(p, name) {
			return true
		}
	}
	return false
}

// globMatch treats malformed patterns as non-matching.
func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
