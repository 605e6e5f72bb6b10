package nav

import (
	"fmt"

	apperrors "filephile/internal/errors"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"
)

// Search fuzzy-matches query against the visible names and moves the cursor
// to the best match. SearchNext cycles through the remaining matches.
func (s *State) Search(query string) error {
	s.clearSearch()
	if query == "" {
		return nil
	}
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	found := fuzzy.Find(query, names)
	if len(found) == 0 {
		return apperrors.NewNavigationError(apperrors.NotFound, query, fmt.Errorf("no match"))
	}
	s.query = query
	for _, m := range found {
		s.matches = append(s.matches, s.entries[m.Index].Path)
	}
	s.MoveToPath(s.matches[0])
	return nil
}

// SearchNext moves to the next match of the last search
func (s *State) SearchNext() error {
	if len(s.matches) == 0 {
		return apperrors.NewNavigationError(apperrors.NotFound, s.query, fmt.Errorf("no active search"))
	}
	for i := 0; i < len(s.matches); i++ {
		s.match = (s.match + 1) % len(s.matches)
		if s.MoveToPath(s.matches[s.match]) {
			return nil
		}
	}
	return apperrors.NewNavigationError(apperrors.NotFound, s.query, fmt.Errorf("no match"))
}

// Query returns the active search query
func (s *State) Query() string { return s.query }

func (s *State) clearSearch() {
	s.query = ""
	s.matches = nil
	s.match = 0
}

// SetFilter hides entries whose names do not match the glob pattern. An
// empty pattern removes the filter.
func (s *State) SetFilter(pattern string) error {
	var g glob.Glob
	if pattern != "" {
		var err error
		if g, err = glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	path := s.currentPath()
	s.filter, s.filterGlob = pattern, g
	s.rebuild()
	s.placeCursor(path, s.cursor)
	return nil
}

// Filter returns the active filter pattern
func (s *State) Filter() string { return s.filter }
