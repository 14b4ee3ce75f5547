package snapshot

import (
	"fmt"
	"strings"
)

// Stats accumulates the outcome of one reconciliation run.
type Stats struct {
	Created     []string
	Updated     []string
	Uncommitted []string
	Deleted     []string
	Unused      []string

	UpdatedDiffs     map[string]string
	UncommittedDiffs map[string]string
}

func NewStats() *Stats {
	return &Stats{
		UpdatedDiffs:     make(map[string]string),
		UncommittedDiffs: make(map[string]string),
	}
}

func (s *Stats) AddCreated(name string) {
	s.Created = append(s.Created, name)
}

func (s *Stats) AddUpdated(name, diff string) {
	s.Updated = append(s.Updated, name)
	if strings.TrimSpace(diff) != "" {
		s.UpdatedDiffs[name] = diff
	}
}

// AddUncommitted records a schema whose stored copy no longer matches but
// was not rewritten. Recorded only when the diff is non-empty.
func (s *Stats) AddUncommitted(name, diff string) {
	if strings.TrimSpace(diff) == "" {
		return
	}
	s.Uncommitted = append(s.Uncommitted, name)
	s.UncommittedDiffs[name] = diff
}

func (s *Stats) AddDeleted(name string) {
	s.Deleted = append(s.Deleted, name)
}

func (s *Stats) AddUnused(name string) {
	s.Unused = append(s.Unused, name)
}

// HasChanges reports whether any stored schema was written or removed.
func (s *Stats) HasChanges() bool {
	return len(s.Created) > 0 || len(s.Updated) > 0 || len(s.Deleted) > 0
}

// HasAnyInfo reports whether there is anything worth printing.
func (s *Stats) HasAnyInfo() bool {
	return s.HasChanges() || len(s.Unused) > 0 || len(s.Uncommitted) > 0
}

func (s *Stats) String() string {
	if !s.HasAnyInfo() {
		return ""
	}

	var b strings.Builder
	writeSection(&b, "Created schemas", s.Created, nil)
	writeSection(&b, "Updated schemas", s.Updated, s.UpdatedDiffs)
	writeSection(&b, "Uncommitted updates", s.Uncommitted, s.UncommittedDiffs)
	if len(s.Uncommitted) > 0 {
		fmt.Fprintln(&b, "Run with update enabled to commit these changes")
	}
	writeSection(&b, "Deleted schemas", s.Deleted, nil)
	writeSection(&b, "Unused schemas", s.Unused, nil)
	if len(s.Unused) > 0 {
		fmt.Fprintln(&b, "Run with update enabled to delete unused schemas")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, title string, names []string, diffs map[string]string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(names))
	for _, n := range names {
		fmt.Fprintf(b, "  - %s%s\n", n, suffix)
		if diff, ok := diffs[n]; ok {
			fmt.Fprintln(b, "    Changes:")
			for _, line := range strings.Split(diff, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				fmt.Fprintf(b, "      %s\n", line)
			}
		}
	}
}
