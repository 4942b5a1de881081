package cycles

import "sort"

// Diff is the change in reported cycles between two analysis runs.
type Diff struct {
	Added    []Cycle `json:"added" yaml:"added"`
	Resolved []Cycle `json:"resolved" yaml:"resolved"`
}

// Empty reports whether nothing changed.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Resolved) == 0
}

// Snapshot is a set of cycles from one run, kept for diffing against the
// next. Cycles are indexed by their normalized form, so a cycle found from
// a different entry point in the next run is the same cycle.
type Snapshot map[string]Cycle

// NewSnapshot indexes found.
func NewSnapshot(found []Cycle) Snapshot {
	s := make(Snapshot, len(found))
	for _, c := range found {
		n := Normalize(c)
		s[n.key()] = n
	}
	return s
}

// ComputeDiff compares the cycles of a new run against old. With no old
// snapshot every cycle counts as added. Both lists are sorted.
func ComputeDiff(old Snapshot, found []Cycle) *Diff {
	diff := &Diff{
		Added:    make([]Cycle, 0),
		Resolved: make([]Cycle, 0),
	}

	current := NewSnapshot(found)
	for k, c := range current {
		if _, exists := old[k]; !exists {
			diff.Added = append(diff.Added, c)
		}
	}
	for k, c := range old {
		if _, exists := current[k]; !exists {
			diff.Resolved = append(diff.Resolved, c)
		}
	}

	sortCycles(diff.Added)
	sortCycles(diff.Resolved)
	return diff
}

func sortCycles(cs []Cycle) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].key() < cs[j].key()
	})
}
