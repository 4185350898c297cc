package sync

import (
	"testing"
	"time"

	"github.com/raphi011/reposet/internal/record"
)

func withURL(root, rel, url string) record.Record {
	r := record.New(root, rel)
	r.RemoteURL = url
	if url != "" {
		r.RemoteName = "origin"
	}
	return r
}

func keys(records []record.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.RelativePath
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMerge_LocalWinsOnConflict(t *testing.T) {
	t.Parallel()

	local := []record.Record{withURL("/src", "app", "U1")}
	stored := []record.Record{withURL("/src", "app", "U2")}

	res := Merge(local, stored)
	if len(res.Merged) != 1 {
		t.Fatalf("got %d merged records, want 1", len(res.Merged))
	}
	if res.Merged[0].RemoteURL != "U1" {
		t.Errorf("RemoteURL = %q, want U1", res.Merged[0].RemoteURL)
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Field != "remote_url" || res.Conflicts[0].Stored != "U2" {
		t.Errorf("Conflicts = %+v, want one remote_url conflict", res.Conflicts)
	}
	if !res.Changed {
		t.Error("Changed = false, want true")
	}
	if len(res.CloneQueue) != 0 {
		t.Errorf("CloneQueue = %v, want empty", keys(res.CloneQueue))
	}
}

func TestMerge_FillsMissingLocalFields(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	local := []record.Record{withURL("/src", "app", "")}

	s := withURL("/other", "App", "https://example.com/app.git")
	s.RemoteName = "upstream"
	s.UserName = "Jane"
	s.SystemFilter = "laptop"
	s.IsRemoteAccessible = record.Bool(true)
	s.StatusDate = record.Time(when)

	res := Merge(local, []record.Record{s})
	got := res.Merged[0]
	if got.RemoteURL != s.RemoteURL || got.RemoteName != "upstream" || got.UserName != "Jane" {
		t.Errorf("merged = %+v, want stored url, remote and user adopted", got)
	}
	if got.SystemFilter != "laptop" {
		t.Errorf("SystemFilter = %q, want laptop", got.SystemFilter)
	}
	if got.IsRemoteAccessible == nil || !*got.IsRemoteAccessible {
		t.Error("IsRemoteAccessible not adopted from stored")
	}
	if got.StatusDate == nil || !got.StatusDate.Equal(when) {
		t.Error("StatusDate not adopted from stored")
	}
	// Local keeps its own root and casing.
	if got.RootPath != "/src" || got.RelativePath != "app" {
		t.Errorf("merged identity = %s %s, want local", got.RootPath, got.RelativePath)
	}
	if len(res.Conflicts) != 0 {
		t.Errorf("Conflicts = %+v, want none", res.Conflicts)
	}

	// Merged values are copies.
	*s.StatusDate = time.Time{}
	if got.StatusDate.IsZero() {
		t.Error("merged record aliases stored StatusDate")
	}
}

func TestMerge_CloneQueue(t *testing.T) {
	t.Parallel()

	stored := []record.Record{
		withURL("/src", "present", "https://example.com/present.git"),
		withURL("/src", "missing", "https://example.com/missing.git"),
		withURL("/src", "nourl", ""),
	}
	local := []record.Record{withURL("/src", "present", "https://example.com/present.git")}

	res := Merge(local, stored)
	if !equalStrings(keys(res.CloneQueue), []string{"missing"}) {
		t.Errorf("CloneQueue = %v, want [missing]", keys(res.CloneQueue))
	}
	if !equalStrings(keys(res.Unclonable), []string{"nourl"}) {
		t.Errorf("Unclonable = %v, want [nourl]", keys(res.Unclonable))
	}
	if !equalStrings(keys(res.Merged), []string{"missing", "nourl", "present"}) {
		t.Errorf("Merged = %v, want all three sorted", keys(res.Merged))
	}
	if res.Changed {
		t.Error("Changed = true, want false when stored-only entries are kept verbatim")
	}
}

func TestMerge_CaseInsensitiveKeys(t *testing.T) {
	t.Parallel()

	local := []record.Record{withURL("/src", "Team/App", "U")}
	stored := []record.Record{withURL("/src", "team/app", "U")}

	res := Merge(local, stored)
	if len(res.Merged) != 1 {
		t.Fatalf("got %d merged records, want 1: %v", len(res.Merged), keys(res.Merged))
	}
	if len(res.CloneQueue) != 0 {
		t.Errorf("CloneQueue = %v, want empty", keys(res.CloneQueue))
	}
}

func TestMerge_DotSegmentsMatch(t *testing.T) {
	t.Parallel()

	local := []record.Record{
		withURL("/src", "a", "U1"),
		withURL("/src", "team/app", "U2"),
	}
	// Raw records as written by hand into an inventory, not normalized.
	stored := []record.Record{
		{RootPath: "/src", RelativePath: "./a", RemoteURL: "U1"},
		{RootPath: "/src", RelativePath: "team/./app", RemoteURL: "U2"},
	}

	res := Merge(local, stored)
	if len(res.Merged) != 2 {
		t.Fatalf("got %d merged records, want 2: %v", len(res.Merged), keys(res.Merged))
	}
	if len(res.CloneQueue) != 0 {
		t.Errorf("CloneQueue = %v, want empty", keys(res.CloneQueue))
	}
	if want := []string{"a", "team/app"}; !equalStrings(keys(res.Merged), want) {
		t.Errorf("Merged = %v, want %v", keys(res.Merged), want)
	}
}

func TestMerge_NewLocalMarksChanged(t *testing.T) {
	t.Parallel()

	res := Merge([]record.Record{withURL("/src", "new", "U")}, nil)
	if !res.Changed {
		t.Error("Changed = false, want true for a newly discovered repository")
	}
	if len(res.Merged) != 1 {
		t.Errorf("got %d merged records, want 1", len(res.Merged))
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	local := []record.Record{
		withURL("/src", "b", "https://example.com/b.git"),
		withURL("/src", "a", "https://example.com/a.git"),
	}
	first := Merge(local, nil)
	second := Merge(local, first.Merged)

	if second.Changed {
		t.Error("second merge reported a change")
	}
	if len(second.Merged) != len(first.Merged) {
		t.Fatalf("merged length changed: %d -> %d", len(first.Merged), len(second.Merged))
	}
	for i := range first.Merged {
		if !first.Merged[i].Equal(second.Merged[i]) {
			t.Errorf("record %d differs between runs", i)
		}
	}
}

func TestMerge_Duplicates(t *testing.T) {
	t.Parallel()

	stored := []record.Record{
		withURL("/src", "a", "U1"),
		withURL("/src", "A", "U2"),
	}
	res := Merge(nil, stored)
	if len(res.Merged) != 1 || res.Merged[0].RemoteURL != "U1" {
		t.Errorf("Merged = %+v, want first entry only", res.Merged)
	}
	if len(res.Duplicates) != 1 {
		t.Errorf("Duplicates = %d, want 1", len(res.Duplicates))
	}
	if !res.Changed {
		t.Error("Changed = false, want true so the duplicate is dropped on write")
	}
}
