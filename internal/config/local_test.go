package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLocal(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, LocalConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestLoadLocal_NoFile(t *testing.T) {
	t.Parallel()

	local, err := LoadLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local != nil {
		t.Fatalf("expected nil, got %+v", local)
	}
}

func TestLoadLocal_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, "")

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local == nil {
		t.Fatal("expected non-nil local config for empty file")
	}
}

func TestLoadLocal_AllFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, `
list_path = "repos.yaml"
remote_name = "upstream"
skip_probe = true
exclude = ["vendor"]

[restore]
overwrite_existing = true
`)

	local, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.ListPath != filepath.Join(dir, "repos.yaml") {
		t.Errorf("ListPath = %q, want resolved against root", local.ListPath)
	}
	if local.RemoteName != "upstream" {
		t.Errorf("RemoteName = %q", local.RemoteName)
	}
	if local.SkipProbe == nil || !*local.SkipProbe {
		t.Error("SkipProbe not set")
	}
	if len(local.Exclude) != 1 || local.Exclude[0] != "vendor" {
		t.Errorf("Exclude = %v", local.Exclude)
	}
	if local.Restore.OverwriteExisting == nil || !*local.Restore.OverwriteExisting {
		t.Error("Restore.OverwriteExisting not set")
	}
	if local.Restore.SkipExisting != nil {
		t.Error("Restore.SkipExisting should be unset")
	}
}

func TestLoadLocal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"both policies", "[restore]\nskip_existing = true\noverwrite_existing = true", "mutually exclusive"},
		{"negated exclude", `exclude = ["!x"]`, "must not be negated"},
		{"malformed", `remote_name = [`, "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeLocal(t, dir, tt.content)
			_, err := LoadLocal(dir)
			if err == nil || !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("LoadLocal() error = %v, want %q", err, tt.errPart)
			}
		})
	}
}

func TestDefaultLocalConfigParses(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeLocal(t, dir, DefaultLocalConfig())
	if _, err := LoadLocal(dir); err != nil {
		t.Errorf("default local template invalid: %v", err)
	}
}
