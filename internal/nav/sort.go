package nav

import (
	"fmt"
	"sort"
	"strings"

	"filephile/internal/domain"
)

// Criterion is a listing order
type Criterion int

const (
	SortByName Criterion = iota
	SortBySize
	SortByModTime
	SortByKind
)

var criterionNames = map[Criterion]string{
	SortByName:    "name",
	SortBySize:    "size",
	SortByModTime: "mtime",
	SortByKind:    "kind",
}

func (c Criterion) String() string {
	if name, ok := criterionNames[c]; ok {
		return name
	}
	return "name"
}

// ParseCriterion parses a criterion name as used in configuration
func ParseCriterion(name string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "name":
		return SortByName, nil
	case "size":
		return SortBySize, nil
	case "mtime", "modified", "time":
		return SortByModTime, nil
	case "kind", "type", "dirs-first":
		return SortByKind, nil
	}
	return SortByName, fmt.Errorf("unknown sort criterion %q (want name, size, mtime or kind)", name)
}

// SortOrder is a criterion plus direction
type SortOrder struct {
	Criterion Criterion
	Reverse   bool
}

func (o SortOrder) String() string {
	if o.Reverse {
		return o.Criterion.String() + " (reversed)"
	}
	return o.Criterion.String()
}

func lessByName(a, b domain.Entry) bool {
	la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
	if la != lb {
		return la < lb
	}
	return a.Name < b.Name
}

func kindRank(e domain.Entry) int {
	if e.IsDir() {
		return 0
	}
	return 1
}

// sortEntries orders entries in place. Ties fall back to the name so the
// order is total and stable across refreshes.
func sortEntries(entries []domain.Entry, order SortOrder) {
	less := func(a, b domain.Entry) bool {
		switch order.Criterion {
		case SortBySize:
			if a.Size != b.Size {
				return a.Size < b.Size
			}
		case SortByModTime:
			if !a.ModTime.Equal(b.ModTime) {
				return a.ModTime.Before(b.ModTime)
			}
		case SortByKind:
			if ra, rb := kindRank(a), kindRank(b); ra != rb {
				return ra < rb
			}
		}
		return lessByName(a, b)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if order.Reverse {
			return less(entries[j], entries[i])
		}
		return less(entries[i], entries[j])
	})
}
