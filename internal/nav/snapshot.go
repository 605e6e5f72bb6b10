package nav

import "filephile/internal/domain"

// Snapshot is an immutable, render-ready copy of the state
type Snapshot struct {
	Dir          string
	Entries      []domain.Entry
	Cursor       int
	Selected     map[string]bool
	Marks        map[string]string
	Sort         SortOrder
	ShowHidden   bool
	Filter       string
	Query        string
	HistoryDepth int
}

// Snapshot copies the state for rendering or for the executor
func (s *State) Snapshot() Snapshot {
	entries := make([]domain.Entry, len(s.entries))
	copy(entries, s.entries)
	selected := make(map[string]bool, len(s.selected))
	for p := range s.selected {
		selected[p] = true
	}
	return Snapshot{
		Dir:          s.dir,
		Entries:      entries,
		Cursor:       s.cursor,
		Selected:     selected,
		Marks:        s.Marks(),
		Sort:         s.opts.Sort,
		ShowHidden:   s.opts.ShowHidden,
		Filter:       s.filter,
		Query:        s.query,
		HistoryDepth: len(s.history),
	}
}

// Current returns the entry under the cursor
func (sn Snapshot) Current() (domain.Entry, bool) {
	if sn.Cursor < 0 || sn.Cursor >= len(sn.Entries) {
		return domain.Entry{}, false
	}
	return sn.Entries[sn.Cursor], true
}

// Targets returns the selected paths in listing order, or the entry under
// the cursor when nothing is selected
func (sn Snapshot) Targets() []string {
	var out []string
	for _, e := range sn.Entries {
		if sn.Selected[e.Path] {
			out = append(out, e.Path)
		}
	}
	if len(out) > 0 {
		return out
	}
	if e, ok := sn.Current(); ok {
		return []string{e.Path}
	}
	return nil
}
