// Package inventory reads and writes inventory files: lists of repository
// records encoded as JSON, YAML or TOML.
//
// JSON and YAML files hold a bare list; TOML, which has no top-level
// arrays, holds a [[repositories]] table array. Every record field is
// written, absent optional values as null or empty, so files re-import
// unchanged. Decoding recomputes FullPath from RootPath and RelativePath.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/raphi011/reposet/internal/record"
)

// tomlDocument wraps the record list for TOML.
type tomlDocument struct {
	Repositories []record.Record `toml:"repositories"`
}

// Encode writes records to w in the given format.
func Encode(w io.Writer, format Format, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(tomlDocument{Repositories: records})
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
}

// Marshal encodes records into a byte slice.
func Marshal(format Format, records []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads records from r. An empty document yields no records.
func Decode(r io.Reader, format Format) ([]record.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(format, data)
}

// Unmarshal decodes records from data and normalizes each one.
func Unmarshal(format Format, data []byte) ([]record.Record, error) {
	var records []record.Record
	if len(bytes.TrimSpace(data)) > 0 {
		switch format {
		case FormatJSON:
			if err := json.Unmarshal(data, &records); err != nil {
				return nil, fmt.Errorf("parse json inventory: %w", err)
			}
		case FormatYAML:
			if err := yaml.Unmarshal(data, &records); err != nil {
				return nil, fmt.Errorf("parse yaml inventory: %w", err)
			}
		case FormatTOML:
			var doc tomlDocument
			if _, err := toml.Decode(string(data), &doc); err != nil {
				return nil, fmt.Errorf("parse toml inventory: %w", err)
			}
			records = doc.Repositories
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
		}
	}

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Normalized())
	}
	return out, nil
}
