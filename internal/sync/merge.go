package sync

import (
	"github.com/raphi011/reposet/internal/record"
)

// Conflict records a field where local and stored values disagreed and
// the local value was kept.
type Conflict struct {
	RelativePath string
	Field        string
	Local        string
	Stored       string
}

// MergeResult is the outcome of reconciling local and stored records.
type MergeResult struct {
	// Merged holds every local record, reconciled with its stored
	// counterpart, plus every stored-only record. Sorted.
	Merged []record.Record
	// CloneQueue holds stored-only records with a remote URL.
	CloneQueue []record.Record
	// Unclonable holds stored-only records without a remote URL. They
	// remain in Merged.
	Unclonable []record.Record
	// Conflicts lists disagreements resolved in favour of local values.
	Conflicts []Conflict
	// Duplicates holds records dropped because an earlier record in the
	// same input had the same key.
	Duplicates []record.Record
	// Changed is true when Merged differs from stored: a local record is
	// new or a reconciled record no longer equals its stored version.
	Changed bool
}

// Merge reconciles records scanned from disk with records loaded from an
// inventory. Local records are authoritative for presence and win every
// metadata conflict; stored values only fill fields the local record
// lacks. Records are matched by Key. Inputs are not modified and the
// result shares no pointers with them.
func Merge(local, stored []record.Record) MergeResult {
	var res MergeResult

	storedByKey := make(map[string]record.Record, len(stored))
	storedOrder := make([]string, 0, len(stored))
	for _, s := range stored {
		k := s.Key()
		if _, dup := storedByKey[k]; dup {
			res.Duplicates = append(res.Duplicates, s.Clone())
			res.Changed = true
			continue
		}
		storedByKey[k] = s
		storedOrder = append(storedOrder, k)
	}

	seen := make(map[string]bool, len(local))
	for _, l := range local {
		k := l.Key()
		if seen[k] {
			res.Duplicates = append(res.Duplicates, l.Clone())
			continue
		}
		seen[k] = true

		s, ok := storedByKey[k]
		if !ok {
			res.Merged = append(res.Merged, l.Clone())
			res.Changed = true
			continue
		}

		merged, conflicts := reconcile(l, s)
		res.Conflicts = append(res.Conflicts, conflicts...)
		if !merged.Equal(s) {
			res.Changed = true
		}
		res.Merged = append(res.Merged, merged)
	}

	for _, k := range storedOrder {
		if seen[k] {
			continue
		}
		s := storedByKey[k].Clone()
		res.Merged = append(res.Merged, s)
		if s.HasRemote() {
			res.CloneQueue = append(res.CloneQueue, s.Clone())
		} else {
			res.Unclonable = append(res.Unclonable, s.Clone())
		}
	}

	record.Sort(res.Merged)
	return res
}

// reconcile starts from the local record and fills its empty fields from
// stored.
func reconcile(local, stored record.Record) (record.Record, []Conflict) {
	out := local.Clone()
	var conflicts []Conflict

	pick := func(field string, l, s string) string {
		switch {
		case l == "":
			return s
		case s != "" && s != l:
			conflicts = append(conflicts, Conflict{
				RelativePath: out.RelativePath,
				Field:        field,
				Local:        l,
				Stored:       s,
			})
		}
		return l
	}

	out.RemoteURL = pick("remote_url", local.RemoteURL, stored.RemoteURL)
	out.RemoteName = pick("remote_name", local.RemoteName, stored.RemoteName)
	out.UserName = pick("user_name", local.UserName, stored.UserName)
	out.UserEmail = pick("user_email", local.UserEmail, stored.UserEmail)

	// Scans never produce a system filter; it only exists in inventories.
	if out.SystemFilter == "" {
		out.SystemFilter = stored.SystemFilter
	}
	if out.IsRemoteAccessible == nil && stored.IsRemoteAccessible != nil {
		v := *stored.IsRemoteAccessible
		out.IsRemoteAccessible = &v
	}
	if out.StatusDate == nil && stored.StatusDate != nil {
		v := *stored.StatusDate
		out.StatusDate = &v
	}
	return out, conflicts
}
