package nav

// MoveCursor moves the cursor by delta. It clamps to the listing unless
// wrapping is enabled.
func (s *State) MoveCursor(delta int) {
	n := len(s.entries)
	if n == 0 {
		s.cursor = 0
		return
	}
	if s.opts.WrapCursor {
		s.cursor = ((s.cursor+delta)%n + n) % n
		return
	}
	s.cursor = clamp(s.cursor+delta, n)
}

// MoveTo puts the cursor on index, clamped
func (s *State) MoveTo(index int) {
	s.cursor = clamp(index, len(s.entries))
}

// MoveToTop puts the cursor on the first entry
func (s *State) MoveToTop() { s.cursor = 0 }

// MoveToBottom puts the cursor on the last entry
func (s *State) MoveToBottom() { s.MoveTo(len(s.entries) - 1) }

// MoveToLine puts the cursor on the 1-based line n
func (s *State) MoveToLine(n int) { s.MoveTo(n - 1) }

// MoveToPath puts the cursor on the entry with the given path; it reports
// whether the path is in the listing
func (s *State) MoveToPath(path string) bool {
	if i := s.indexOf(path); i >= 0 {
		s.cursor = i
		return true
	}
	return false
}
