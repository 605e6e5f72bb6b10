// Package operation plans and runs filesystem operations on behalf of the
// dispatch loop. An operation is planned into a Pending by Execute and run
// item by item by Drive, which may stop early to wait for a confirmation or a
// conflict decision and is called again once that arrives.
package operation

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
	"filephile/internal/eventbus"
	"filephile/internal/fsys"
	"filephile/internal/input/action"
	"filephile/internal/log"
	"filephile/internal/nav"

	"github.com/google/uuid"
)

// Options configures an Executor
type Options struct {
	Policy        Policy
	ConfirmDelete bool
	// Commands maps names usable with run_external to command templates
	Commands map[string]string
	Editor   string
}

// Executor plans and drives operations
type Executor struct {
	fs      fsys.Provider
	bus     eventbus.EventBus
	invoker Invoker
	opts    Options
	newID   func() string
}

// NewExecutor creates an executor. bus may be nil.
func NewExecutor(provider fsys.Provider, bus eventbus.EventBus, invoker Invoker, opts Options) *Executor {
	if invoker == nil {
		invoker = ExecInvoker{}
	}
	return &Executor{
		fs:      provider,
		bus:     bus,
		invoker: invoker,
		opts:    opts,
		newID:   func() string { return uuid.New().String() },
	}
}

// SetInvoker replaces the external program runner
func (e *Executor) SetInvoker(inv Invoker) {
	e.invoker = inv
}

// Options returns the executor configuration
func (e *Executor) Options() Options {
	return e.opts
}

// Execute plans the filesystem operation for a resolved action against a
// snapshot of the navigation state. Nothing touches the disk until Drive.
func (e *Executor) Execute(a action.Action, snap nav.Snapshot) (*Pending, error) {
	switch a.Kind {
	case action.CopyTo:
		return e.Copy(snap.Targets(), resolve(snap.Dir, a.Arg), snap.Dir)
	case action.MoveTo:
		return e.Move(snap.Targets(), resolve(snap.Dir, a.Arg), snap.Dir)
	case action.Delete:
		return e.Delete(snap.Targets(), snap.Dir)
	case action.Rename:
		cur, ok := snap.Current()
		if !ok {
			return nil, apperrors.NewOperationError(string(domain.OpRename), apperrors.NotFound, snap.Dir, fmt.Errorf("no entry under cursor"))
		}
		return e.Rename(cur.Path, a.Arg, false)
	case action.CreateFile:
		return e.Create(snap.Dir, a.Arg, false)
	case action.CreateDir:
		return e.Create(snap.Dir, a.Arg, true)
	case action.RunExternal:
		template := a.Arg
		if named, ok := e.opts.Commands[a.Arg]; ok {
			template = named
		}
		return e.External(template, snap.Targets(), snap.Dir)
	case action.Open:
		cur, ok := snap.Current()
		if !ok {
			return nil, apperrors.NewOperationError(string(domain.OpExternal), apperrors.NotFound, snap.Dir, fmt.Errorf("no entry under cursor"))
		}
		if e.opts.Editor == "" {
			return nil, apperrors.NewOperationError(string(domain.OpExternal), apperrors.Unknown, cur.Path, fmt.Errorf("no editor configured"))
		}
		return e.External(e.opts.Editor, []string{cur.Path}, snap.Dir)
	}
	return nil, fmt.Errorf("%s is not a filesystem operation", a.Kind)
}

func resolve(dir, path string) string {
	if path == "" {
		return dir
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return filepath.Clean(path)
}

// Copy plans copying sources into destDir
func (e *Executor) Copy(sources []string, destDir, dir string) (*Pending, error) {
	return e.transfer(domain.OpCopy, sources, destDir, dir)
}

// Move plans moving sources into destDir
func (e *Executor) Move(sources []string, destDir, dir string) (*Pending, error) {
	return e.transfer(domain.OpMove, sources, destDir, dir)
}

func (e *Executor) transfer(kind domain.OperationKind, sources []string, destDir, dir string) (*Pending, error) {
	op := string(kind)
	if len(sources) == 0 {
		return nil, apperrors.NewOperationError(op, apperrors.NotFound, dir, fmt.Errorf("nothing to %s", op))
	}
	st, err := e.fs.Stat(destDir)
	if err != nil {
		return nil, apperrors.NewOperationError(op, apperrors.Classify(err), destDir, err)
	}
	if !st.IsDir() {
		return nil, apperrors.NewOperationError(op, apperrors.NotADirectory, destDir, nil)
	}
	items := make([]Item, 0, len(sources))
	for _, src := range sources {
		items = append(items, Item{Source: src, Destination: filepath.Join(destDir, filepath.Base(src))})
	}
	p := newPending(e.newID(), kind, dir, items)
	p.Policy = e.opts.Policy
	return p, nil
}

// Delete plans deleting paths. It waits for Confirm when confirmation is on.
func (e *Executor) Delete(paths []string, dir string) (*Pending, error) {
	if len(paths) == 0 {
		return nil, apperrors.NewOperationError(string(domain.OpDelete), apperrors.NotFound, dir, fmt.Errorf("nothing to delete"))
	}
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, Item{Source: p})
	}
	p := newPending(e.newID(), domain.OpDelete, dir, items)
	if e.opts.ConfirmDelete {
		p.state = StateAwaitingConfirmation
	}
	return p, nil
}

// Rename plans renaming path to newName within its directory. An existing
// entry with that name is an AlreadyExists error unless force is set.
func (e *Executor) Rename(path, newName string, force bool) (*Pending, error) {
	op := string(domain.OpRename)
	if err := validateName(op, newName); err != nil {
		return nil, err
	}
	dst := filepath.Join(filepath.Dir(path), newName)
	if dst != path && !force && e.fs.Exists(dst) {
		return nil, apperrors.NewOperationError(op, apperrors.AlreadyExists, dst, fs.ErrExist)
	}
	p := newPending(e.newID(), domain.OpRename, filepath.Dir(path), []Item{{Source: path, Destination: dst}})
	p.Force = force
	return p, nil
}

// Create plans creating an empty file or directory called name in dir
func (e *Executor) Create(dir, name string, isDir bool) (*Pending, error) {
	op := string(domain.OpCreate)
	if err := validateName(op, name); err != nil {
		return nil, err
	}
	dst := filepath.Join(dir, name)
	if e.fs.Exists(dst) {
		return nil, apperrors.NewOperationError(op, apperrors.AlreadyExists, dst, fs.ErrExist)
	}
	p := newPending(e.newID(), domain.OpCreate, dir, []Item{{Destination: dst}})
	p.IsDir = isDir
	return p, nil
}

// External plans running a command template over paths
func (e *Executor) External(template string, paths []string, dir string) (*Pending, error) {
	argv, err := Expand(template, paths, dir)
	if err != nil {
		return nil, apperrors.NewOperationError(string(domain.OpExternal), apperrors.InvalidName, template, err)
	}
	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, Item{Source: p})
	}
	p := newPending(e.newID(), domain.OpExternal, dir, items)
	p.Command = argv
	return p, nil
}

// Undo plans reversing a finished operation from its journal, newest item
// first
func (e *Executor) Undo(r Result) (*Pending, error) {
	if len(r.Journal) == 0 {
		return nil, apperrors.NewOperationError(string(domain.OpUndo), apperrors.EmptyHistory, "", fmt.Errorf("nothing to undo"))
	}
	items := make([]Item, 0, len(r.Journal))
	for i := len(r.Journal) - 1; i >= 0; i-- {
		items = append(items, Item{Source: r.Journal[i].Path, Destination: r.Journal[i].To})
	}
	return newPending(e.newID(), domain.OpUndo, r.Dir, items), nil
}

// Drive runs p until it finishes, is cancelled through ctx, or has to wait
// for a confirmation or a conflict decision. After Confirm or Resolve, call
// Drive again to continue where it stopped. Items already done are never
// rolled back.
func (e *Executor) Drive(ctx context.Context, p *Pending) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateAwaitingConfirmation:
		return p.result(StatusAwaitingConfirmation)
	case StateAwaitingDecision:
		return p.result(StatusSuspended)
	case StateDone:
		return p.result(p.finalStatus())
	case StateCancelled:
		return p.result(StatusCancelled)
	}

	logger := log.LogWithFields(log.F("op", p.ID), log.F("kind", p.Kind))
	if !p.started {
		p.started = true
		logger.Infof("starting %s", p.Describe())
		e.publish(eventbus.OperationStartedEvent{ID: p.ID, Kind: p.Kind, Total: len(p.Items)})
	}
	p.state = StateRunning

	if p.Kind == domain.OpExternal {
		e.runExternal(ctx, p)
		return e.finish(p)
	}

	for p.next < len(p.Items) {
		if p.aborted {
			return e.cancel(p, fmt.Errorf("aborted"))
		}
		if err := ctx.Err(); err != nil {
			return e.cancel(p, err)
		}
		item := p.Items[p.next]
		suspend, err := e.step(p, item)
		if suspend {
			p.state = StateAwaitingDecision
			logger.Debugf("waiting for a decision on %s", p.conflict.Destination)
			e.publish(eventbus.OperationCompletedEvent{ID: p.ID, Kind: p.Kind, Status: StatusSuspended.String()})
			return p.result(StatusSuspended)
		}
		if err != nil {
			logger.WithError(err).Warnf("item %d failed", p.next)
			p.res.Failed = append(p.res.Failed, apperrors.ItemFailure{Index: p.next, Path: itemPath(item), Err: err})
		}
		p.next++
		e.publish(eventbus.OperationProgressEvent{Progress: domain.OperationProgress{
			ID:      p.ID,
			Kind:    p.Kind,
			Done:    p.next,
			Total:   len(p.Items),
			Current: itemPath(item),
		}})
	}
	return e.finish(p)
}

func itemPath(it Item) string {
	if it.Source != "" {
		return it.Source
	}
	return it.Destination
}

// step runs one item. suspend is true when a conflict needs a decision; the
// item is retried on the next Drive.
func (e *Executor) step(p *Pending, it Item) (suspend bool, err error) {
	switch p.Kind {
	case domain.OpCopy, domain.OpMove:
		return e.transferItem(p, it)
	case domain.OpDelete:
		if err := e.fs.Delete(it.Source); err != nil {
			return false, err
		}
		p.res.Succeeded = append(p.res.Succeeded, it.Source)
	case domain.OpRename:
		if it.Source == it.Destination {
			p.res.Skipped = append(p.res.Skipped, it.Source)
			return false, nil
		}
		if p.Force && e.fs.Exists(it.Destination) {
			if err := e.fs.Delete(it.Destination); err != nil {
				return false, err
			}
		}
		if err := e.fs.Rename(it.Source, it.Destination); err != nil {
			return false, err
		}
		p.res.Succeeded = append(p.res.Succeeded, it.Source)
		p.res.Renamed[it.Source] = it.Destination
		p.res.Journal = append(p.res.Journal, Reversal{Path: it.Destination, To: it.Source})
	case domain.OpCreate:
		create := e.fs.CreateFile
		if p.IsDir {
			create = e.fs.CreateDir
		}
		if err := create(it.Destination); err != nil {
			return false, err
		}
		p.res.Succeeded = append(p.res.Succeeded, it.Destination)
		p.res.Created = append(p.res.Created, it.Destination)
		p.res.Journal = append(p.res.Journal, Reversal{Path: it.Destination})
	case domain.OpUndo:
		if it.Destination == "" {
			err = e.fs.Delete(it.Source)
		} else {
			err = e.fs.Move(it.Source, it.Destination)
		}
		if err != nil {
			return false, err
		}
		p.res.Succeeded = append(p.res.Succeeded, it.Source)
		if it.Destination != "" {
			p.res.Renamed[it.Source] = it.Destination
		}
	default:
		return false, fmt.Errorf("unsupported operation %s", p.Kind)
	}
	return false, nil
}

func (e *Executor) transferItem(p *Pending, it Item) (bool, error) {
	dst := it.Destination
	overwrote := false
	switch {
	case it.Source == dst:
		// pasting into the directory the entries came from
		if p.Kind == domain.OpMove {
			p.res.Skipped = append(p.res.Skipped, it.Source)
			return false, nil
		}
		dst = uniqueName(e.fs, dst)
	case e.fs.Exists(dst):
		choice, ok := p.choice()
		if !ok {
			p.conflict = &Conflict{
				ID:          p.ID,
				Kind:        p.Kind,
				Source:      it.Source,
				Destination: dst,
				Index:       p.next,
				Total:       len(p.Items),
			}
			return true, nil
		}
		switch choice {
		case ChoiceSkip:
			p.res.Skipped = append(p.res.Skipped, it.Source)
			return false, nil
		case ChoiceOverwrite:
			if err := e.fs.Delete(dst); err != nil {
				return false, err
			}
			overwrote = true
		case ChoiceRename:
			dst = uniqueName(e.fs, dst)
		}
	}

	if p.Kind == domain.OpCopy {
		if err := e.fs.Copy(it.Source, dst); err != nil {
			return false, err
		}
		// removing an overwriting copy would not bring the old entry back
		if !overwrote {
			p.res.Journal = append(p.res.Journal, Reversal{Path: dst})
		}
	} else {
		if err := e.fs.Move(it.Source, dst); err != nil {
			return false, err
		}
		p.res.Renamed[it.Source] = dst
		p.res.Journal = append(p.res.Journal, Reversal{Path: dst, To: it.Source})
	}
	p.res.Succeeded = append(p.res.Succeeded, it.Source)
	p.res.Created = append(p.res.Created, dst)
	return false, nil
}

func (e *Executor) runExternal(ctx context.Context, p *Pending) {
	op := string(domain.OpExternal)
	bin := p.Command[0]
	code, err := e.invoker.Invoke(ctx, p.Command, p.Dir)
	p.res.ExitCode = code
	p.next = len(p.Items)
	switch {
	case err != nil:
		p.res.Failed = append(p.res.Failed, apperrors.ItemFailure{Path: bin, Err: apperrors.NewOperationError(op, apperrors.Classify(err), bin, err)})
	case code != 0:
		p.res.Failed = append(p.res.Failed, apperrors.ItemFailure{Path: bin, Err: apperrors.NewOperationError(op, apperrors.Unknown, bin, fmt.Errorf("exit status %d", code))})
	default:
		p.res.Succeeded = append(p.res.Succeeded, bin)
	}
}

// cancel stops p before the next item. Everything not yet attempted is
// reported as cancelled.
func (e *Executor) cancel(p *Pending, cause error) Result {
	for _, it := range p.Items[p.next:] {
		p.res.Cancelled = append(p.res.Cancelled, itemPath(it))
	}
	p.next = len(p.Items)
	p.state = StateCancelled
	p.res.Err = apperrors.NewOperationError(string(p.Kind), apperrors.Cancelled, "", cause)
	log.LogWithFields(log.F("op", p.ID)).Infof("%s cancelled: %d done, %d not attempted", p.Kind, len(p.res.Succeeded), len(p.res.Cancelled))
	e.publish(eventbus.OperationCompletedEvent{ID: p.ID, Kind: p.Kind, Status: StatusCancelled.String(), Err: p.res.Err})
	return p.result(StatusCancelled)
}

func (e *Executor) finish(p *Pending) Result {
	p.state = StateDone
	switch {
	case len(p.res.Failed) == 0:
		p.res.Err = nil
	case len(p.Items) <= 1:
		p.res.Err = p.res.Failed[0].Err
	default:
		p.res.Err = apperrors.NewPartialFailure(string(p.Kind), p.res.Succeeded, p.res.Failed)
	}
	status := p.finalStatus()
	entry := log.LogWithFields(log.F("op", p.ID), log.F("succeeded", len(p.res.Succeeded)), log.F("failed", len(p.res.Failed)))
	if p.res.Err != nil {
		entry.WithError(p.res.Err).Warnf("%s finished with errors", p.Kind)
	} else {
		entry.Infof("%s finished", p.Kind)
	}
	e.publish(eventbus.OperationCompletedEvent{ID: p.ID, Kind: p.Kind, Status: status.String(), Err: p.res.Err})
	return p.result(status)
}

func (p *Pending) finalStatus() Status {
	if len(p.res.Failed) > 0 {
		return StatusFailed
	}
	return StatusCompleted
}

func (e *Executor) publish(ev eventbus.DomainEvent) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
