package inventory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/reposet/internal/record"
)

// Load reads the inventory at path, inferring the format from its
// extension. A missing file is reported with an error satisfying
// errors.Is(err, os.ErrNotExist).
func Load(path string) ([]record.Record, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	records, err := Unmarshal(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Save writes records to path atomically: the data goes to a temp file in
// the same directory which is then renamed over the target. The parent
// directory is created if needed.
func Save(path string, records []record.Record) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(format, records)
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create inventory directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write inventory: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write inventory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write inventory: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up temp file on failure
		return fmt.Errorf("save inventory: %w", err)
	}
	return nil
}
