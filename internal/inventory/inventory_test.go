package inventory

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/reposet/internal/record"
)

func sampleRecords() []record.Record {
	full := record.New("/home/me/src", "github/reposet")
	full.RemoteName = "origin"
	full.RemoteURL = "git@github.com:raphi011/reposet.git"
	full.IsRemoteAccessible = record.Bool(true)
	full.UserName = "Raphael"
	full.UserEmail = "raphi@example.com"
	full.StatusDate = record.Time(time.Date(2024, 3, 1, 12, 30, 15, 500, time.UTC))
	full.SystemFilter = "work-*,!work-old"

	blocked := record.New("/home/me/src", "gitlab/private")
	blocked.RemoteURL = "https://gitlab.example.com/private.git"
	blocked.IsRemoteAccessible = record.Bool(false)

	// Every optional field absent.
	bare := record.New("/home/me/src", ".")

	return []record.Record{full, blocked, bare}
}

func TestRoundtrip_AllFormats(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()

			want := sampleRecords()
			data, err := Marshal(format, want)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}

			got, err := Unmarshal(format, data)
			if err != nil {
				t.Fatalf("Unmarshal() error = %v\n%s", err, data)
			}
			if len(got) != len(want) {
				t.Fatalf("got %d records, want %d", len(got), len(want))
			}
			for i := range want {
				if !got[i].Equal(want[i]) {
					t.Errorf("record %d mismatch:\n got  %+v\n want %+v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestEncode_JSONWritesAbsentFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, []record.Record{record.New("/src", "a")}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	for _, field := range []string{`"is_remote_accessible": null`, `"status_date": null`, `"remote_url": ""`} {
		if !strings.Contains(out, field) {
			t.Errorf("output missing %s:\n%s", field, out)
		}
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "[") {
		t.Errorf("json inventory should be a top-level array:\n%s", out)
	}
}

func TestEncode_EmptyList(t *testing.T) {
	t.Parallel()

	data, err := Marshal(FormatJSON, nil)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Marshal(nil) = %q, want []", data)
	}
}

func TestUnmarshal_RecomputesFullPath(t *testing.T) {
	t.Parallel()

	data := []byte(`[{"root_path": "/src/", "relative_path": "a\\b//c", "full_path": "/somewhere/else"}]`)
	got, err := Unmarshal(FormatJSON, data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got[0].RelativePath != "a/b/c" {
		t.Errorf("RelativePath = %q, want a/b/c", got[0].RelativePath)
	}
	want := filepath.Join("/src", "a", "b", "c")
	if got[0].FullPath != want {
		t.Errorf("FullPath = %q, want %q", got[0].FullPath, want)
	}
}

func TestUnmarshal_Empty(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatJSON, FormatYAML, FormatTOML} {
		got, err := Unmarshal(format, []byte("  \n"))
		if err != nil {
			t.Errorf("%s: Unmarshal(empty) error = %v", format, err)
		}
		if len(got) != 0 {
			t.Errorf("%s: got %d records, want 0", format, len(got))
		}
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	t.Parallel()

	if _, err := Unmarshal(FormatJSON, []byte(`{"not": "a list"`)); err == nil {
		t.Error("expected error for malformed json")
	}
	if _, err := Unmarshal(FormatTOML, []byte(`[[repositories]`)); err == nil {
		t.Error("expected error for malformed toml")
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"repos.json", FormatJSON, false},
		{"/x/repos.YAML", FormatYAML, false},
		{"repos.yml", FormatYAML, false},
		{"repos.toml", FormatTOML, false},
		{"repos.csv", 0, true},
		{"repos", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("FormatFromPath(%q) error = %v, want ErrUnknownFormat", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFromPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "repos.yaml")
	want := sampleRecords()

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("record %d mismatch:\n got  %+v\n want %+v", i, got[i], want[i])
		}
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the inventory file, found %d entries", len(entries))
	}
}

func TestLoad_NotFound(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "repos.txt")
	if err := Save(path, nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Save() error = %v, want ErrUnknownFormat", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should not be created for an unknown format")
	}
}

func TestFileLock_TryLockContended(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "repos.json")
	first := LockFor(path)
	if err := first.Lock(); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}

	second := LockFor(path)
	ok, err := second.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error = %v", err)
	}
	if ok {
		t.Fatal("TryLock() succeeded while lock was held")
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	ok, err = second.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock() after unlock = %v, %v", ok, err)
	}
	if err := second.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	t.Parallel()

	if err := NewFileLock(filepath.Join(t.TempDir(), "x.lock")).Unlock(); err != nil {
		t.Errorf("Unlock() without Lock() error = %v", err)
	}
}
