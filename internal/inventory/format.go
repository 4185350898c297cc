package inventory

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is an inventory file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

// ErrUnknownFormat is returned for file extensions or names with no codec.
var ErrUnknownFormat = errors.New("unknown inventory format")

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension returns the preferred file extension including the dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat maps a format name ("json", "yaml", "yml", "toml") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %q (want json, yaml or toml)", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return f, nil
}
