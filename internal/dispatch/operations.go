package dispatch

import (
	"fmt"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
	"filephile/internal/input/action"
	"filephile/internal/log"
	"filephile/internal/operation"
)

// plan hands a filesystem action to the executor
func (e *Engine) plan(a action.Action) []Effect {
	p, err := e.exec.Execute(a, e.nav.Snapshot())
	if err != nil {
		return e.fail(err)
	}
	return e.start(p)
}

// start runs p, asking first when it needs confirmation
func (e *Engine) start(p *operation.Pending) []Effect {
	if p.NeedsConfirmation() {
		return e.ask(p.Describe()+"? (y/n)", func() []Effect {
			if err := p.Confirm(); err != nil {
				return e.fail(err)
			}
			return e.start(p)
		})
	}
	if _, ok := e.running[p.ID]; !ok {
		e.seq++
		e.started[p.ID] = e.seq
	}
	e.running[p.ID] = p
	log.LogWithFields(log.F("op", p.ID)).Debugf("start %s", p.Describe())
	return []Effect{StartOperation{Pending: p}}
}

func (e *Engine) paste() []Effect {
	if len(e.register.paths) == 0 {
		e.notice = info("nothing to paste")
		return nil
	}
	dir := e.nav.Dir()
	var p *operation.Pending
	var err error
	if e.register.cut {
		p, err = e.exec.Move(e.register.paths, dir, dir)
	} else {
		p, err = e.exec.Copy(e.register.paths, dir, dir)
	}
	if err != nil {
		return e.fail(err)
	}
	if e.register.cut {
		// cut entries move once
		e.register = register{}
	}
	return e.start(p)
}

// rename renames the entry under the cursor. A name that is taken is
// reported and offered for overwrite; nothing changes unless confirmed.
func (e *Engine) rename(name string) []Effect {
	cur, ok := e.nav.Current()
	if !ok {
		return nil
	}
	p, err := e.exec.Rename(cur.Path, name, false)
	if apperrors.IsAlreadyExists(err) {
		e.fail(err)
		return e.ask(fmt.Sprintf("%s exists. Overwrite? (y/n)", name), func() []Effect {
			p, err := e.exec.Rename(cur.Path, name, true)
			if err != nil {
				return e.fail(err)
			}
			return e.start(p)
		})
	}
	if err != nil {
		return e.fail(err)
	}
	return e.start(p)
}

func (e *Engine) decide(d operation.Decision) []Effect {
	if len(e.prompts) == 0 {
		return e.setMode(action.ModeNormal)
	}
	p := e.prompts[0]
	e.prompts = e.prompts[1:]
	var effects []Effect
	if len(e.prompts) == 0 {
		effects = e.setMode(action.ModeNormal)
	}
	if err := p.Resolve(d); err != nil {
		return append(effects, e.fail(err)...)
	}
	return append(effects, e.start(p)...)
}

func (e *Engine) cancelAll() []Effect {
	var effects []Effect
	for len(e.prompts) > 0 {
		effects = append(effects, e.decide(operation.Decision{Choice: operation.ChoiceAbort})...)
	}
	if len(e.running) == 0 {
		e.notice = info("no running operations")
		return effects
	}
	return append(effects, CancelOperations{})
}

// HandleProgress records progress reported by a running operation
func (e *Engine) HandleProgress(p domain.OperationProgress) {
	if _, ok := e.running[p.ID]; ok {
		e.progress[p.ID] = p
	}
}

// HandleResult folds the outcome of driving an operation into the
// navigation state. It is the only place operation results reach it.
func (e *Engine) HandleResult(res operation.Result) []Effect {
	p, ok := e.running[res.ID]
	if !ok {
		return nil
	}

	switch res.Status {
	case operation.StatusSuspended:
		e.prompts = append(e.prompts, p)
		var effects []Effect
		if e.mode != action.ModePrompt && e.confirming == nil {
			effects = e.setMode(action.ModePrompt)
		}
		e.notice = info("%s", conflictPrompt(p))
		return effects
	case operation.StatusAwaitingConfirmation:
		delete(e.running, res.ID)
		return e.start(p)
	}

	delete(e.running, res.ID)
	delete(e.progress, res.ID)
	delete(e.started, res.ID)

	var effects []Effect
	if err := e.fold(res); err != nil {
		e.fail(err)
	}
	switch {
	case res.Status == operation.StatusCancelled:
		e.notice = Notice{
			Level: LevelWarn,
			Text:  fmt.Sprintf("%s cancelled: %d done, %d not attempted", res.Kind, len(res.Succeeded), len(res.Cancelled)),
			Err:   res.Err,
		}
	case res.Err != nil:
		e.fail(res.Err)
	default:
		e.notice = summary(res)
	}
	if len(res.Journal) > 0 && res.Kind != domain.OpUndo {
		r := res
		e.undoable = &r
	}
	if e.quitting && len(e.running) == 0 {
		effects = append(effects, Quit{})
	}
	return effects
}

// fold brings the listing, selection and marks in line with what the
// operation did on disk
func (e *Engine) fold(res operation.Result) error {
	renamed := false
	for oldPath, newPath := range res.Renamed {
		if err := e.nav.ApplyRename(oldPath, newPath); err != nil {
			return err
		}
		renamed = true
	}
	if !renamed {
		if err := e.nav.Refresh(); err != nil {
			return err
		}
	}
	if res.Kind == domain.OpCreate && len(res.Created) > 0 {
		e.nav.MoveToPath(res.Created[0])
	}
	return nil
}

func summary(res operation.Result) Notice {
	switch res.Kind {
	case domain.OpExternal:
		return info("command finished")
	case domain.OpRename:
		for _, newPath := range res.Renamed {
			return info("renamed to %s", newPath)
		}
		return info("name unchanged")
	case domain.OpCreate:
		if len(res.Created) > 0 {
			return info("created %s", res.Created[0])
		}
	}
	n := info("%s: %d done", res.Kind, len(res.Succeeded))
	if len(res.Skipped) > 0 {
		n.Text += fmt.Sprintf(", %d skipped", len(res.Skipped))
	}
	return n
}

func conflictPrompt(p *operation.Pending) string {
	c := p.Conflict()
	if c == nil {
		return ""
	}
	return fmt.Sprintf("%s exists: [o]verwrite [s]kip [r]ename [a]bort (capital: all)", c.Destination)
}
