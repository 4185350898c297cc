package git

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MarkerName is the directory whose presence marks a repository root.
const MarkerName = ".git"

// Config holds the entries of a single git config file in file order.
// Only the repository-local file is ever read, so global and system
// settings never leak into an inventory.
type Config struct {
	entries []configEntry
}

type configEntry struct {
	section    string // lowercased
	subsection string // case-sensitive for [section "sub"]
	key        string // lowercased
	value      string
}

// Get returns the last value of key in [section "subsection"]. Section and
// key match case-insensitively, the subsection exactly.
func (c *Config) Get(section, subsection, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	section = strings.ToLower(section)
	key = strings.ToLower(key)

	var (
		value string
		found bool
	)
	for _, e := range c.entries {
		if e.section == section && e.subsection == subsection && e.key == key {
			value, found = e.value, true
		}
	}
	return value, found
}

// ReadLocalConfig reads <repoPath>/.git/config.
func ReadLocalConfig(repoPath string) (*Config, error) {
	f, err := os.Open(filepath.Join(repoPath, MarkerName, "config"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig parses git's section/key-value format line by line. Lines it
// cannot understand are skipped, as are keys outside any section; an
// unterminated section header closes the current section.
func ParseConfig(r io.Reader) (*Config, error) {
	var (
		cfg        Config
		inSection  bool
		section    string
		subsection string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}

		if line[0] == '[' {
			end := closingBracket(line)
			if end < 0 {
				inSection = false
				continue
			}
			section, subsection = parseSectionHeader(line[1:end])
			inSection = section != ""
			// "[core] bare = false" is legal git syntax.
			line = strings.TrimSpace(line[end+1:])
			if line == "" || line[0] == '#' || line[0] == ';' {
				continue
			}
		}

		if !inSection {
			continue
		}

		key, value, hasValue := strings.Cut(line, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}
		if hasValue {
			value = parseValue(value)
		} else {
			// A bare key is boolean true.
			value = "true"
		}
		cfg.entries = append(cfg.entries, configEntry{
			section:    section,
			subsection: subsection,
			key:        key,
			value:      value,
		})
	}
	if err := sc.Err(); err != nil {
		return &cfg, err
	}
	return &cfg, nil
}

// closingBracket finds the "]" ending a section header, skipping brackets
// inside a quoted subsection.
func closingBracket(line string) int {
	inQuote := false
	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case ']':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

// parseSectionHeader handles [section], [section "sub"] and the deprecated
// [section.sub] forms.
func parseSectionHeader(h string) (section, subsection string) {
	h = strings.TrimSpace(h)
	if q := strings.IndexByte(h, '"'); q >= 0 {
		section = strings.ToLower(strings.TrimSpace(h[:q]))
		sub := h[q+1:]
		if i := strings.LastIndexByte(sub, '"'); i >= 0 {
			sub = sub[:i]
		}
		return section, unescapeSubsection(sub)
	}
	if dot := strings.IndexByte(h, '.'); dot >= 0 {
		return strings.ToLower(h[:dot]), strings.ToLower(h[dot+1:])
	}
	return strings.ToLower(h), ""
}

func unescapeSubsection(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// parseValue strips surrounding whitespace, double quotes and trailing
// comments, and resolves the escapes git documents for values.
func parseValue(raw string) string {
	raw = strings.TrimSpace(raw)

	var (
		b       strings.Builder
		inQuote bool
		// length of b up to the last character that must be kept, so that
		// trailing unquoted whitespace can be dropped.
		keep int
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			keep = b.Len()
			continue
		case !inQuote && (c == '#' || c == ';'):
			return b.String()[:keep]
		case c == '\\' && i+1 < len(raw):
			i++
			switch raw[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			default:
				b.WriteByte(raw[i])
			}
			keep = b.Len()
			continue
		}
		b.WriteByte(c)
		if inQuote || (c != ' ' && c != '\t') {
			keep = b.Len()
		}
	}
	return b.String()[:keep]
}
