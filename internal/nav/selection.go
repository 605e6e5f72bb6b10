package nav

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
)

// ToggleSelection flips the selection of path. Paths outside the current
// listing are ignored.
func (s *State) ToggleSelection(path string) {
	if s.indexOf(path) < 0 {
		return
	}
	if _, ok := s.selected[path]; ok {
		delete(s.selected, path)
	} else {
		s.selected[path] = struct{}{}
	}
	s.anchor = path
}

// ToggleCurrent flips the selection of the entry under the cursor
func (s *State) ToggleCurrent() {
	s.ToggleSelection(s.currentPath())
}

// SelectRange selects every entry between the listing indexes from and to,
// inclusive
func (s *State) SelectRange(from, to int) {
	if len(s.entries) == 0 {
		return
	}
	from, to = clamp(from, len(s.entries)), clamp(to, len(s.entries))
	if from > to {
		from, to = to, from
	}
	for i := from; i <= to; i++ {
		s.selected[s.entries[i].Path] = struct{}{}
	}
}

// SelectToCursor selects from the last toggled entry (or the cursor) to the cursor
func (s *State) SelectToCursor() {
	from := s.indexOf(s.anchor)
	if from < 0 {
		from = s.cursor
		s.anchor = s.currentPath()
	}
	s.SelectRange(from, s.cursor)
}

// SetAnchor starts a range selection at the cursor
func (s *State) SetAnchor() {
	s.anchor = s.currentPath()
}

// SelectAll selects every visible entry
func (s *State) SelectAll() {
	for _, e := range s.entries {
		s.selected[e.Path] = struct{}{}
	}
}

// ClearSelection empties the selection
func (s *State) ClearSelection() {
	s.selected = make(map[string]struct{})
	s.anchor = ""
}

// SelectGlob adds every entry whose name matches pattern and returns how many
// matched
func (s *State) SelectGlob(pattern string) (int, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return 0, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	n := 0
	for _, e := range s.entries {
		if g.Match(e.Name) {
			s.selected[e.Path] = struct{}{}
			n++
		}
	}
	return n, nil
}

// IsSelected reports whether path is selected
func (s *State) IsSelected(path string) bool {
	_, ok := s.selected[path]
	return ok
}

// Selected returns the selected paths in listing order, including ones the
// filter or hidden setting currently hides
func (s *State) Selected() []string {
	out := make([]string, 0, len(s.selected))
	for _, e := range s.all {
		if _, ok := s.selected[e.Path]; ok {
			out = append(out, e.Path)
		}
	}
	// selection is validated on every rebuild, so this only matters if a
	// path was added behind the listing's back
	if len(out) != len(s.selected) {
		extra := make([]string, 0)
		for p := range s.selected {
			if !s.exists(p) {
				extra = append(extra, p)
			}
		}
		sort.Strings(extra)
		out = append(out, extra...)
	}
	return out
}

// Targets returns the selection, or the entry under the cursor when nothing
// is selected
func (s *State) Targets() []string {
	if sel := s.Selected(); len(sel) > 0 {
		return sel
	}
	if p := s.currentPath(); p != "" {
		return []string{p}
	}
	return nil
}
