// Package nav holds the navigation state: current directory, listing,
// cursor, selection, marks and history. It is owned by the dispatch loop and
// mutated only through the methods below. Methods that return an error leave
// the state unchanged.
package nav

import (
	"path/filepath"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
	"filephile/internal/fsys"

	"github.com/gobwas/glob"
)

// HistoryEntry is a previously visited directory and where the cursor was
type HistoryEntry struct {
	Dir        string
	Cursor     int
	CursorPath string
}

// Options configures a State
type Options struct {
	WrapCursor bool
	ShowHidden bool
	Sort       SortOrder
}

// State is the navigation state
type State struct {
	lister fsys.Lister
	opts   Options

	dir     string
	all     []domain.Entry // full listing in sort order
	entries []domain.Entry // visible listing
	cursor  int

	selected   map[string]struct{}
	anchor     string                         // path range selection starts from
	selections map[string]map[string]struct{} // remembered per directory

	marks     map[string]string
	history   []HistoryEntry
	positions map[string]string // last cursor path per directory

	filter     string
	filterGlob glob.Glob

	query   string
	matches []string
	match   int
}

// New creates an empty state; call EnterDirectory to load the first listing
func New(lister fsys.Lister, opts Options) *State {
	return &State{
		lister:     lister,
		opts:       opts,
		selected:   make(map[string]struct{}),
		selections: make(map[string]map[string]struct{}),
		marks:      make(map[string]string),
		positions:  make(map[string]string),
	}
}

// Dir returns the current directory
func (s *State) Dir() string { return s.dir }

// Entries returns the visible listing. The slice must not be modified.
func (s *State) Entries() []domain.Entry { return s.entries }

// Cursor returns the cursor index
func (s *State) Cursor() int { return s.cursor }

// History returns the directory history, oldest first
func (s *State) History() []HistoryEntry { return s.history }

// Current returns the entry under the cursor
func (s *State) Current() (domain.Entry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return domain.Entry{}, false
	}
	return s.entries[s.cursor], true
}

func (s *State) currentPath() string {
	if e, ok := s.Current(); ok {
		return e.Path
	}
	return ""
}

func (s *State) indexOf(path string) int {
	for i, e := range s.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// exists reports whether path is in the directory, visible or not
func (s *State) exists(path string) bool {
	for _, e := range s.all {
		if e.Path == path {
			return true
		}
	}
	return false
}

func navError(path string, err error) error {
	kind := apperrors.Classify(err)
	switch kind {
	case apperrors.NotFound, apperrors.PermissionDenied, apperrors.NotADirectory:
	default:
		kind = apperrors.NotFound
	}
	return apperrors.NewNavigationError(kind, path, err)
}

// list reads dir, checking it is something that can be entered
func (s *State) list(dir string) ([]domain.Entry, error) {
	st, err := s.lister.Stat(dir)
	if err != nil {
		return nil, navError(dir, err)
	}
	if !st.IsDir() {
		return nil, apperrors.NewNavigationError(apperrors.NotADirectory, dir, nil)
	}
	entries, err := s.lister.List(dir)
	if err != nil {
		return nil, navError(dir, err)
	}
	return entries, nil
}

// install replaces the listing with dir's entries and puts the cursor on
// cursorPath if present, otherwise on index fallback clamped
func (s *State) install(dir string, entries []domain.Entry, cursorPath string, fallback int) {
	if s.dir != "" && s.dir != dir {
		s.remember()
	}
	changed := s.dir != dir
	s.dir = dir
	s.all = entries
	sortEntries(s.all, s.opts.Sort)
	if changed {
		s.filter, s.filterGlob = "", nil
		s.selected = s.selections[dir]
		if s.selected == nil {
			s.selected = make(map[string]struct{})
		}
		s.anchor = ""
	}
	s.rebuild()
	s.clearSearch()
	s.placeCursor(cursorPath, fallback)
}

// remember stores the cursor and selection of the current directory
func (s *State) remember() {
	if p := s.currentPath(); p != "" {
		s.positions[s.dir] = p
	}
	if len(s.selected) > 0 {
		s.selections[s.dir] = s.selected
	} else {
		delete(s.selections, s.dir)
	}
}

// rebuild recomputes the visible listing and drops selected paths that are
// no longer in the directory. Filtered or hidden entries stay selected.
func (s *State) rebuild() {
	s.entries = s.entries[:0:0]
	for _, e := range s.all {
		if !s.opts.ShowHidden && e.IsHidden() {
			continue
		}
		if s.filterGlob != nil && !s.filterGlob.Match(e.Name) {
			continue
		}
		s.entries = append(s.entries, e)
	}
	for path := range s.selected {
		if !s.exists(path) {
			delete(s.selected, path)
		}
	}
	if s.anchor != "" && s.indexOf(s.anchor) < 0 {
		s.anchor = ""
	}
}

func (s *State) placeCursor(path string, fallback int) {
	if i := s.indexOf(path); path != "" && i >= 0 {
		s.cursor = i
		return
	}
	s.cursor = clamp(fallback, len(s.entries))
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// EnterDirectory lists path and makes it current, pushing the previous
// directory onto the history. The cursor goes to where it was when path was
// last visited, or to the top.
func (s *State) EnterDirectory(path string) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return apperrors.NewNavigationError(apperrors.NotFound, path, err)
	}
	entries, err := s.list(dir)
	if err != nil {
		return err
	}
	if s.dir != "" {
		s.history = append(s.history, HistoryEntry{Dir: s.dir, Cursor: s.cursor, CursorPath: s.currentPath()})
	}
	s.install(dir, entries, s.positions[dir], 0)
	return nil
}

// GoBack returns to the previous directory in the history with its cursor
func (s *State) GoBack() error {
	if len(s.history) == 0 {
		return apperrors.NewNavigationError(apperrors.EmptyHistory, "", nil)
	}
	prev := s.history[len(s.history)-1]
	entries, err := s.list(prev.Dir)
	if err != nil {
		return err
	}
	s.history = s.history[:len(s.history)-1]
	s.install(prev.Dir, entries, prev.CursorPath, prev.Cursor)
	return nil
}

// Parent enters the parent directory with the cursor on the directory just left
func (s *State) Parent() error {
	parent := filepath.Dir(s.dir)
	if parent == s.dir {
		return nil
	}
	child := s.dir
	if err := s.EnterDirectory(parent); err != nil {
		return err
	}
	s.placeCursor(child, s.cursor)
	return nil
}

// Refresh re-reads the current directory. The cursor stays on the same
// entry when it still exists; selected entries and marks that no longer
// exist are dropped.
func (s *State) Refresh() error {
	return s.refreshKeeping(s.currentPath())
}

func (s *State) refreshKeeping(cursorPath string) error {
	entries, err := s.list(s.dir)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Path] = struct{}{}
	}
	for name, path := range s.marks {
		if filepath.Dir(path) != s.dir {
			continue
		}
		if _, ok := present[path]; !ok {
			delete(s.marks, name)
		}
	}
	s.install(s.dir, entries, cursorPath, s.cursor)
	return nil
}

// Sort re-orders the listing. The cursor tracks the same entry.
func (s *State) Sort(order SortOrder) {
	path := s.currentPath()
	s.opts.Sort = order
	sortEntries(s.all, order)
	s.rebuild()
	s.placeCursor(path, s.cursor)
}

// SortOrder returns the active order
func (s *State) SortOrder() SortOrder { return s.opts.Sort }

// ToggleHidden shows or hides dotfiles
func (s *State) ToggleHidden() {
	path := s.currentPath()
	s.opts.ShowHidden = !s.opts.ShowHidden
	s.rebuild()
	s.placeCursor(path, s.cursor)
}

// ShowHidden reports whether dotfiles are listed
func (s *State) ShowHidden() bool { return s.opts.ShowHidden }

// ApplyRename rewrites every reference to oldPath (selection, marks,
// history, remembered cursors) to newPath and refreshes the listing with the
// cursor on the renamed entry
func (s *State) ApplyRename(oldPath, newPath string) error {
	if _, ok := s.selected[oldPath]; ok {
		delete(s.selected, oldPath)
		s.selected[newPath] = struct{}{}
	}
	if s.anchor == oldPath {
		s.anchor = newPath
	}
	for name, p := range s.marks {
		s.marks[name] = rebase(p, oldPath, newPath)
	}
	for i := range s.history {
		s.history[i].Dir = rebase(s.history[i].Dir, oldPath, newPath)
		s.history[i].CursorPath = rebase(s.history[i].CursorPath, oldPath, newPath)
	}
	positions := make(map[string]string, len(s.positions))
	for dir, p := range s.positions {
		positions[rebase(dir, oldPath, newPath)] = rebase(p, oldPath, newPath)
	}
	s.positions = positions

	cursorPath := s.currentPath()
	if cursorPath == oldPath {
		cursorPath = newPath
	}
	return s.refreshKeeping(cursorPath)
}

// rebase rewrites path if it is oldPath or lies below it
func rebase(path, oldPath, newPath string) string {
	if path == oldPath {
		return newPath
	}
	rel, err := filepath.Rel(oldPath, path)
	if err != nil || rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return path
	}
	return filepath.Join(newPath, rel)
}
