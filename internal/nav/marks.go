package nav

import (
	"path/filepath"
	"sort"

	apperrors "filephile/internal/errors"
)

// SetMark stores the entry under the cursor (or the directory itself when
// the listing is empty) under name
func (s *State) SetMark(name string) {
	path := s.currentPath()
	if path == "" {
		path = s.dir
	}
	s.marks[name] = path
}

// Mark returns the path stored under name
func (s *State) Mark(name string) (string, bool) {
	p, ok := s.marks[name]
	return p, ok
}

// Marks returns a copy of the mark registers
func (s *State) Marks() map[string]string {
	out := make(map[string]string, len(s.marks))
	for k, v := range s.marks {
		out[k] = v
	}
	return out
}

// MarkNames returns the mark names, sorted
func (s *State) MarkNames() []string {
	names := make([]string, 0, len(s.marks))
	for k := range s.marks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// JumpToMark goes to the path stored under name: into it when it is a
// directory, otherwise to its parent with the cursor on it. An unknown mark
// or a path that no longer exists fails without changing state.
func (s *State) JumpToMark(name string) error {
	path, ok := s.marks[name]
	if !ok {
		return apperrors.NewNavigationError(apperrors.NotFound, "mark "+name, nil)
	}
	st, err := s.lister.Stat(path)
	if err != nil {
		return navError(path, err)
	}
	if st.IsDir() {
		if path == s.dir {
			return nil
		}
		return s.EnterDirectory(path)
	}
	parent := filepath.Dir(path)
	if parent != s.dir {
		if err := s.EnterDirectory(parent); err != nil {
			return err
		}
	}
	s.MoveToPath(path)
	return nil
}
