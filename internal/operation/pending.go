package operation

import (
	"fmt"
	"strings"
	"sync"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
)

// Policy decides what happens when a copy or move destination exists
type Policy int

const (
	PolicySkip Policy = iota
	PolicyOverwrite
	PolicyRename // RenameNewWithSuffix
	PolicyPrompt
)

var policyNames = map[Policy]string{
	PolicySkip:      "skip",
	PolicyOverwrite: "overwrite",
	PolicyRename:    "rename",
	PolicyPrompt:    "prompt",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParsePolicy parses a conflict policy name
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "skip":
		return PolicySkip, nil
	case "overwrite", "replace":
		return PolicyOverwrite, nil
	case "rename", "rename_new", "suffix":
		return PolicyRename, nil
	case "prompt", "ask":
		return PolicyPrompt, nil
	}
	return PolicySkip, fmt.Errorf("unknown conflict policy %q (want skip, overwrite, rename or prompt)", name)
}

// State is the lifecycle of a Pending operation
type State int

const (
	StateQueued State = iota
	StateAwaitingConfirmation
	StateRunning
	StateAwaitingDecision
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateRunning:
		return "running"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Item is one unit of work. Destination is empty for delete; for create
// only Destination is set.
type Item struct {
	Source      string
	Destination string
}

// Choice answers a conflict prompt
type Choice int

const (
	ChoiceSkip Choice = iota
	ChoiceOverwrite
	ChoiceRename
	ChoiceAbort
)

// Decision resolves a suspended conflict. ApplyToAll reuses the choice for
// every later conflict of the same operation.
type Decision struct {
	Choice     Choice
	ApplyToAll bool
}

// Conflict describes the destination collision an operation is waiting on
type Conflict struct {
	ID          string
	Kind        domain.OperationKind
	Source      string
	Destination string
	Index       int
	Total       int
}

// Status is how a call to Drive ended
type Status int

const (
	StatusCompleted Status = iota
	StatusFailed
	StatusSuspended
	StatusAwaitingConfirmation
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSuspended:
		return "suspended"
	case StatusAwaitingConfirmation:
		return "awaiting_confirmation"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Reversal undoes one completed item: Path is deleted when To is empty,
// otherwise moved back to To
type Reversal struct {
	Path string
	To   string
}

// Result is the outcome of driving a Pending operation
type Result struct {
	ID        string
	Kind      domain.OperationKind
	Status    Status
	Dir       string // directory the operation was started from
	Succeeded []string
	Skipped   []string
	Failed    []apperrors.ItemFailure
	Cancelled []string          // items never attempted
	Created   []string          // destinations written
	Renamed   map[string]string // old path -> new path
	Conflict  *Conflict
	Journal   []Reversal
	ExitCode  int
	Err       error
}

// Finished reports whether the operation will not run again
func (r Result) Finished() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed || r.Status == StatusCancelled
}

// Pending is a planned operation. It is driven by Executor.Drive and may
// stop to wait for a confirmation or a conflict decision.
type Pending struct {
	ID      string
	Kind    domain.OperationKind
	Items   []Item
	Policy  Policy
	Dir     string
	Command []string // argv for run-external
	Force   bool     // rename over an existing entry
	IsDir   bool     // create a directory rather than a file

	mu       sync.Mutex
	state    State
	next     int
	started  bool
	aborted  bool
	sticky   *Decision
	decision *Decision
	conflict *Conflict
	res      Result
}

func newPending(id string, kind domain.OperationKind, dir string, items []Item) *Pending {
	return &Pending{
		ID:    id,
		Kind:  kind,
		Items: items,
		Dir:   dir,
		res: Result{
			ID:      id,
			Kind:    kind,
			Dir:     dir,
			Renamed: make(map[string]string),
		},
	}
}

// State returns the lifecycle state
func (p *Pending) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// NeedsConfirmation reports whether Drive will wait for Confirm
func (p *Pending) NeedsConfirmation() bool {
	return p.State() == StateAwaitingConfirmation
}

// Confirm lets an operation awaiting confirmation run
func (p *Pending) Confirm() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAwaitingConfirmation {
		return fmt.Errorf("operation %s is %s, not awaiting confirmation", p.ID, p.state)
	}
	p.state = StateQueued
	return nil
}

// Resolve answers the conflict the operation is suspended on
func (p *Pending) Resolve(d Decision) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateAwaitingDecision {
		return fmt.Errorf("operation %s is %s, not awaiting a decision", p.ID, p.state)
	}
	if d.Choice == ChoiceAbort {
		p.aborted = true
	} else {
		p.decision = &d
		if d.ApplyToAll {
			p.sticky = &d
		}
	}
	p.conflict = nil
	p.state = StateQueued
	return nil
}

// Conflict returns the collision the operation is waiting on, if any
func (p *Pending) Conflict() *Conflict {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conflict
}

// Describe returns a short human description for prompts
func (p *Pending) Describe() string {
	switch p.Kind {
	case domain.OpExternal:
		return "run " + strings.Join(p.Command, " ")
	case domain.OpRename:
		return fmt.Sprintf("rename %s", p.Items[0].Source)
	case domain.OpCreate:
		return fmt.Sprintf("create %s", p.Items[0].Destination)
	}
	if len(p.Items) == 1 {
		return fmt.Sprintf("%s %s", p.Kind, p.Items[0].Source)
	}
	return fmt.Sprintf("%s %d items", p.Kind, len(p.Items))
}

// choice returns how to handle a collision on the current item. ok is false
// when the user has to be asked.
func (p *Pending) choice() (Choice, bool) {
	if p.decision != nil {
		d := p.decision
		p.decision = nil
		return d.Choice, true
	}
	if p.sticky != nil {
		return p.sticky.Choice, true
	}
	switch p.Policy {
	case PolicySkip:
		return ChoiceSkip, true
	case PolicyOverwrite:
		return ChoiceOverwrite, true
	case PolicyRename:
		return ChoiceRename, true
	}
	return ChoiceSkip, false
}

// result copies the accumulated outcome with the given status
func (p *Pending) result(status Status) Result {
	r := p.res
	r.Status = status
	r.Succeeded = append([]string(nil), p.res.Succeeded...)
	r.Skipped = append([]string(nil), p.res.Skipped...)
	r.Failed = append([]apperrors.ItemFailure(nil), p.res.Failed...)
	r.Cancelled = append([]string(nil), p.res.Cancelled...)
	r.Created = append([]string(nil), p.res.Created...)
	r.Journal = append([]Reversal(nil), p.res.Journal...)
	r.Renamed = make(map[string]string, len(p.res.Renamed))
	for k, v := range p.res.Renamed {
		r.Renamed[k] = v
	}
	if p.conflict != nil {
		c := *p.conflict
		r.Conflict = &c
	}
	return r
}
