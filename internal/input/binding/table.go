// Package binding resolves a stream of key events into actions through
// mode-scoped tries of key sequences.
package binding

import (
	"errors"
	"fmt"
	"time"

	"filephile/internal/input/action"
	"filephile/internal/input/key"
)

// DefaultTimeout is how long a sequence that is a prefix of a longer binding
// waits for the next key
const DefaultTimeout = time.Second

const maxCount = 99999

var (
	ErrDuplicate      = errors.New("duplicate binding")
	ErrPrefixConflict = errors.New("binding shares a prefix with another binding")
	ErrEmptySequence  = errors.New("empty key sequence")
)

// Status is the outcome of feeding one key to the table
type Status int

const (
	// Idle is returned by Timeout when there was nothing to expire
	Idle Status = iota
	Pending
	Resolved
	NoMatch
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case NoMatch:
		return "no match"
	default:
		return "idle"
	}
}

// Result describes what a key did
type Result struct {
	Status Status
	Action action.Action
	// Keys is the sequence accumulated so far (Pending), the sequence that
	// resolved (Resolved) or the sequence that failed (NoMatch)
	Keys key.Sequence
	// Count is the repeat count typed so far
	Count int
	// Dropped is a failed sequence discarded before the last key was
	// retried on its own
	Dropped key.Sequence
	// Reset is set when Escape cleared the pending state
	Reset bool
	// Replay is set when the pending sequence resolved to its own binding
	// because the last key did not continue it. The last key was not
	// consumed and must be fed again.
	Replay bool
	// Generation identifies the pending state a timeout belongs to
	Generation uint64
}

// Table resolves key events to actions. It is not safe for concurrent use;
// the dispatch loop is its only caller.
type Table struct {
	modes  map[action.Mode]*trie
	global *trie

	timeout time.Duration
	strict  bool

	pending    key.Sequence
	count      int
	generation uint64
	deadline   time.Time
	now        func() time.Time
}

// Option configures a Table
type Option func(*Table)

// WithTimeout sets the inter-key timeout
func WithTimeout(d time.Duration) Option {
	return func(t *Table) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithStrictPrefixes rejects bindings that are a prefix of another binding in
// the same scope unless one of them is marked Chain
func WithStrictPrefixes(strict bool) Option {
	return func(t *Table) { t.strict = strict }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

// New creates an empty table
func New(opts ...Option) *Table {
	t := &Table{
		modes:   make(map[action.Mode]*trie),
		global:  newTrie(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SequenceTimeout returns the inter-key timeout
func (t *Table) SequenceTimeout() time.Duration {
	return t.timeout
}

func (t *Table) scope(b Binding) *trie {
	if b.Global {
		return t.global
	}
	tr, ok := t.modes[b.Mode]
	if !ok {
		tr = newTrie()
		t.modes[b.Mode] = tr
	}
	return tr
}

// Add registers a binding
func (t *Table) Add(b Binding) error {
	if len(b.Keys) == 0 {
		return ErrEmptySequence
	}
	tr := t.scope(b)
	if exact, _ := tr.lookup(b.Keys); exact != nil {
		return fmt.Errorf("%w: %s %s is already bound to %s", ErrDuplicate, b.Scope(), b.Keys, exact.Action)
	}
	if t.strict && !b.Chain {
		if other := tr.conflicts(b.Keys); other != nil && !other.Chain {
			return fmt.Errorf("%w: %s %s and %s", ErrPrefixConflict, b.Scope(), b.Keys, other.Keys)
		}
	}
	bb := b
	tr.insert(&bb)
	return nil
}

// Bindings returns the bindings of a mode followed by the global ones
func (t *Table) Bindings(mode action.Mode) []Binding {
	var out []Binding
	if tr, ok := t.modes[mode]; ok {
		out = append(out, tr.all()...)
	}
	return append(out, t.global.all()...)
}

// All returns every binding, global ones first
func (t *Table) All() []Binding {
	out := t.global.all()
	for _, m := range action.Modes() {
		if tr, ok := t.modes[m]; ok {
			out = append(out, tr.all()...)
		}
	}
	return out
}

// Pending returns the keys typed so far and the count
func (t *Table) Pending() (key.Sequence, int) {
	return t.pending, t.count
}

// Deadline returns when the pending sequence expires
func (t *Table) Deadline() (time.Time, uint64, bool) {
	if len(t.pending) == 0 {
		return time.Time{}, t.generation, false
	}
	return t.deadline, t.generation, true
}

// Reset discards any pending keys and count
func (t *Table) Reset() {
	t.pending = nil
	t.count = 0
	t.generation++
}

// lookup consults the mode scope, then the global scope
func (t *Table) lookup(mode action.Mode, seq key.Sequence) (*Binding, bool) {
	var exact *Binding
	var longer bool
	if tr, ok := t.modes[mode]; ok {
		exact, longer = tr.lookup(seq)
	}
	gExact, gLonger := t.global.lookup(seq)
	if exact == nil {
		exact = gExact
	}
	return exact, longer || gLonger
}

// Resolve feeds one key event
func (t *Table) Resolve(mode action.Mode, ev key.Event) Result {
	if ev.IsEscape() && (len(t.pending) > 0 || t.count > 0) {
		seq := t.pending.Append(ev)
		t.Reset()
		return Result{Status: NoMatch, Keys: seq, Reset: true}
	}

	if len(t.pending) == 0 && !mode.IsText() && ev.IsDigit() && (ev.Rune != '0' || t.count > 0) {
		t.count = t.count*10 + int(ev.Rune-'0')
		if t.count > maxCount {
			t.count = maxCount
		}
		return Result{Status: Pending, Count: t.count, Generation: t.generation}
	}

	seq := t.pending.Append(ev)
	exact, longer := t.lookup(mode, seq)

	switch {
	case longer:
		t.pending = seq
		t.generation++
		t.deadline = t.now().Add(t.timeout)
		return Result{Status: Pending, Keys: seq, Count: t.count, Generation: t.generation}

	case exact != nil:
		count := t.count
		t.Reset()
		return Result{Status: Resolved, Action: exact.Action.WithCount(count), Keys: seq, Count: count}
	}

	hadPending := len(t.pending) > 0
	if hadPending {
		if prefix, _ := t.lookup(mode, t.pending); prefix != nil {
			keys, count := t.pending, t.count
			t.Reset()
			return Result{Status: Resolved, Action: prefix.Action.WithCount(count), Keys: keys, Count: count, Replay: true}
		}
	}
	t.Reset()
	if !hadPending {
		if ev.IsEscape() {
			return Result{Status: NoMatch, Keys: seq, Reset: true}
		}
		return Result{Status: NoMatch, Keys: seq}
	}

	// the last key may start a sequence of its own
	retry := t.Resolve(mode, ev)
	if retry.Status == NoMatch {
		retry.Keys = seq
		return retry
	}
	retry.Dropped = seq[:len(seq)-1]
	return retry
}

// Timeout expires the pending sequence of the given generation: the prefix
// resolves to its own binding if it has one, otherwise to NoMatch. A stale
// generation returns Idle.
func (t *Table) Timeout(mode action.Mode, generation uint64) Result {
	if generation != t.generation || len(t.pending) == 0 {
		return Result{Status: Idle}
	}
	seq, count := t.pending, t.count
	exact, _ := t.lookup(mode, seq)
	t.Reset()
	if exact == nil {
		return Result{Status: NoMatch, Keys: seq}
	}
	return Result{Status: Resolved, Action: exact.Action.WithCount(count), Keys: seq, Count: count}
}

// Expire times out the pending sequence if its deadline has passed at now
func (t *Table) Expire(mode action.Mode, now time.Time) Result {
	if len(t.pending) == 0 || now.Before(t.deadline) {
		return Result{Status: Idle}
	}
	return t.Timeout(mode, t.generation)
}
