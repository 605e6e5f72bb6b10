// Package dispatch is the dispatch loop: it feeds key events to the binding
// table, applies resolved actions to the navigation state or hands them to
// the operation executor, and folds operation results back into the state.
// The Engine is the only writer of navigation state and must be called from
// a single goroutine.
package dispatch

import (
	"fmt"
	"strings"

	"filephile/internal/domain"
	apperrors "filephile/internal/errors"
	"filephile/internal/input/action"
	"filephile/internal/input/binding"
	"filephile/internal/input/key"
	"filephile/internal/log"
	"filephile/internal/nav"
	"filephile/internal/operation"
)

// Options configures an Engine
type Options struct {
	ConfirmQuit bool
	PageSize    int
}

type textPurpose int

const (
	textNone textPurpose = iota
	textRename
	textCommand
	textSearch
)

type confirmation struct {
	prompt string
	yes    func() []Effect
}

type register struct {
	paths []string
	cut   bool
}

// Engine is the dispatch loop state machine
type Engine struct {
	nav   *nav.State
	table *binding.Table
	exec  *operation.Executor
	opts  Options

	mode     action.Mode
	notice   Notice
	awaitArg action.Action
	purpose  textPurpose
	input    string

	confirming *confirmation
	prompts    []*operation.Pending // suspended on a conflict, oldest first

	running  map[string]*operation.Pending
	progress map[string]domain.OperationProgress
	started  map[string]uint64
	seq      uint64

	register register
	undoable *operation.Result
	quitting bool
}

// New creates an engine. Call Start to load the first directory.
func New(state *nav.State, table *binding.Table, exec *operation.Executor, opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Engine{
		nav:      state,
		table:    table,
		exec:     exec,
		opts:     opts,
		running:  make(map[string]*operation.Pending),
		progress: make(map[string]domain.OperationProgress),
		started:  make(map[string]uint64),
	}
}

// Start enters dir
func (e *Engine) Start(dir string) ([]Effect, error) {
	if err := e.nav.EnterDirectory(dir); err != nil {
		return nil, err
	}
	return []Effect{WatchDirectory{Dir: e.nav.Dir()}}, nil
}

// Mode returns the active mode
func (e *Engine) Mode() action.Mode { return e.mode }

// Table returns the binding table
func (e *Engine) Table() *binding.Table { return e.table }

// Notice returns the current notice
func (e *Engine) Notice() Notice { return e.notice }

// SetPageSize sets how far page_up and page_down move
func (e *Engine) SetPageSize(n int) {
	if n > 0 {
		e.opts.PageSize = n
	}
}

// SetInput records the current contents of the text field
func (e *Engine) SetInput(text string) { e.input = text }

// Running reports how many operations are in flight
func (e *Engine) Running() int { return len(e.running) }

// HandleKey feeds one key event
func (e *Engine) HandleKey(ev key.Event) []Effect {
	if e.awaitArg.Kind != action.None {
		a := e.awaitArg
		e.awaitArg = action.Action{}
		if ev.IsEscape() || !ev.IsPrintable() {
			return nil
		}
		return e.apply(a.WithArg(string(ev.Rune)))
	}

	res := e.table.Resolve(e.mode, ev)
	switch res.Status {
	case binding.Pending:
		if len(res.Keys) == 0 {
			return nil
		}
		return []Effect{ScheduleTimeout{After: e.table.SequenceTimeout(), Generation: res.Generation}}
	case binding.Resolved:
		log.Debugf("%s %s -> %s", e.mode, res.Keys, res.Action)
		effects := e.apply(res.Action)
		if res.Replay {
			effects = append(effects, e.HandleKey(ev)...)
		}
		return effects
	}
	return e.noMatch(res)
}

// Dispatch applies an action that did not come from a key, such as a
// refresh after the directory changed on disk
func (e *Engine) Dispatch(a action.Action) []Effect {
	return e.apply(a)
}

// Report shows err as a notice
func (e *Engine) Report(err error) {
	e.fail(err)
}

// HandleTimeout expires the pending key sequence of generation
func (e *Engine) HandleTimeout(generation uint64) []Effect {
	res := e.table.Timeout(e.mode, generation)
	switch res.Status {
	case binding.Idle:
		return nil
	case binding.Resolved:
		return e.apply(res.Action)
	}
	return e.noMatch(res)
}

func (e *Engine) noMatch(res binding.Result) []Effect {
	if e.mode.IsText() {
		if res.Reset {
			return nil
		}
		return []Effect{PassThrough{}}
	}
	if res.Reset {
		e.notice = Notice{}
		return nil
	}
	err := apperrors.NewInputError(apperrors.NoBinding, res.Keys.String())
	e.notice = Notice{Level: LevelWarn, Text: err.Error(), Err: err}
	return nil
}

// fail turns err into a notice. Nothing an action does aborts the loop.
func (e *Engine) fail(err error) []Effect {
	log.LogWithError(err).Warn("action failed")
	e.notice = Notice{Level: LevelError, Text: err.Error(), Err: err}
	return nil
}

func (e *Engine) setMode(m action.Mode) []Effect {
	prev := e.mode
	e.mode = m
	e.table.Reset()
	var effects []Effect
	if prev.IsText() && !m.IsText() {
		e.purpose = textNone
		e.input = ""
		effects = append(effects, EndTextInput{})
	}
	if m == action.ModeVisual && prev != action.ModeVisual {
		e.nav.SetAnchor()
		e.nav.SelectToCursor()
	}
	return effects
}

func (e *Engine) beginText(m action.Mode, purpose textPurpose, prompt, initial string) []Effect {
	effects := e.setMode(m)
	e.purpose = purpose
	e.input = initial
	return append(effects, BeginTextInput{Mode: m, Prompt: prompt, Initial: initial})
}

func (e *Engine) ask(prompt string, yes func() []Effect) []Effect {
	e.confirming = &confirmation{prompt: prompt, yes: yes}
	return e.setMode(action.ModeConfirm)
}

// apply runs one resolved action
func (e *Engine) apply(a action.Action) []Effect {
	switch a.Kind {
	case action.MoveDown, action.MoveUp, action.MoveTop, action.MoveBottom, action.PageDown, action.PageUp:
		e.move(a)
		return nil

	case action.Enter:
		cur, ok := e.nav.Current()
		if !ok {
			return nil
		}
		if !cur.IsDir() {
			return e.apply(action.New(action.Open))
		}
		return e.changeDir(func() error { return e.nav.EnterDirectory(cur.Path) })
	case action.Parent:
		return e.changeDir(e.nav.Parent)
	case action.Back:
		return e.changeDir(e.nav.GoBack)
	case action.Refresh:
		if err := e.nav.Refresh(); err != nil {
			return e.fail(err)
		}
		return nil

	case action.ToggleSelect:
		for i := 0; i < a.Times(); i++ {
			e.nav.ToggleCurrent()
			if a.Count > 0 {
				e.nav.MoveCursor(1)
			}
		}
		return nil
	case action.SelectRange:
		e.nav.SelectToCursor()
		return nil
	case action.SelectAll:
		e.nav.SelectAll()
		return nil
	case action.ClearSelection:
		e.nav.ClearSelection()
		e.notice = Notice{}
		return nil
	case action.SelectGlob:
		n, err := e.nav.SelectGlob(a.Arg)
		if err != nil {
			return e.fail(err)
		}
		e.notice = info("%d selected by %s", n, a.Arg)
		return nil

	case action.SetMark, action.JumpToMark:
		if a.Arg == "" {
			e.awaitArg = a
			return nil
		}
		if a.Kind == action.SetMark {
			e.nav.SetMark(a.Arg)
			e.notice = info("mark %s set", a.Arg)
			return nil
		}
		return e.changeDir(func() error { return e.nav.JumpToMark(a.Arg) })

	case action.Sort:
		crit, err := nav.ParseCriterion(a.Arg)
		if err != nil {
			return e.fail(err)
		}
		order := e.nav.SortOrder()
		order.Criterion = crit
		e.nav.Sort(order)
		return nil
	case action.ReverseSort:
		order := e.nav.SortOrder()
		order.Reverse = !order.Reverse
		e.nav.Sort(order)
		return nil
	case action.Search:
		if a.Arg == "" {
			return e.beginText(action.ModeSearch, textSearch, "/", "")
		}
		if err := e.nav.Search(a.Arg); err != nil {
			return e.fail(err)
		}
		return nil
	case action.SearchNext:
		if err := e.nav.SearchNext(); err != nil {
			return e.fail(err)
		}
		return nil
	case action.Filter:
		if err := e.nav.SetFilter(a.Arg); err != nil {
			return e.fail(err)
		}
		return nil
	case action.ToggleHidden:
		e.nav.ToggleHidden()
		return nil

	case action.Copy, action.Cut:
		targets := e.nav.Targets()
		if len(targets) == 0 {
			return nil
		}
		e.register = register{paths: targets, cut: a.Kind == action.Cut}
		verb := "copied"
		if e.register.cut {
			verb = "cut"
		}
		e.notice = info("%d %s", len(targets), verb)
		if e.mode == action.ModeVisual {
			return e.setMode(action.ModeNormal)
		}
		return nil
	case action.Paste:
		return e.paste()
	case action.Delete:
		var effects []Effect
		if e.mode == action.ModeVisual {
			effects = e.setMode(action.ModeNormal)
		}
		return append(effects, e.plan(a)...)
	case action.Rename:
		if a.Arg == "" {
			cur, ok := e.nav.Current()
			if !ok {
				return nil
			}
			return e.beginText(action.ModeRename, textRename, "rename: ", cur.Name)
		}
		return e.rename(a.Arg)
	case action.CreateFile, action.CreateDir:
		if a.Arg == "" {
			cmd := "touch "
			if a.Kind == action.CreateDir {
				cmd = "mkdir "
			}
			return e.beginText(action.ModeCommand, textCommand, ":", cmd)
		}
		return e.plan(a)
	case action.CopyTo, action.MoveTo, action.RunExternal, action.Open:
		return e.plan(a)
	case action.Undo:
		if e.undoable == nil {
			return e.fail(apperrors.NewOperationError(string(domain.OpUndo), apperrors.EmptyHistory, "", fmt.Errorf("nothing to undo")))
		}
		p, err := e.exec.Undo(*e.undoable)
		if err != nil {
			return e.fail(err)
		}
		e.undoable = nil
		return e.start(p)
	case action.CancelOperation:
		return e.cancelAll()

	case action.ChangeMode:
		mode, err := action.ParseMode(a.Arg)
		if err != nil {
			return e.fail(err)
		}
		if mode.IsText() {
			return e.beginText(mode, purposeOf(mode), promptOf(mode), "")
		}
		return e.setMode(mode)
	case action.Command:
		initial := a.Arg
		if initial != "" {
			initial += " "
		}
		return e.beginText(action.ModeCommand, textCommand, ":", initial)
	case action.Submit:
		return e.submit()
	case action.Confirm:
		return e.confirm(a.Arg)
	case action.Cancel:
		return e.cancel()

	case action.YankPath:
		targets := e.nav.Targets()
		if len(targets) == 0 {
			return nil
		}
		e.notice = info("yanked %d path(s)", len(targets))
		return []Effect{CopyToClipboard{Text: strings.Join(targets, "\n")}}
	case action.Preview:
		cur, ok := e.nav.Current()
		if !ok {
			return nil
		}
		if cur.IsDir() {
			e.notice = info("%s is a directory", cur.Name)
			return nil
		}
		return []Effect{OpenPager{Title: cur.Name, Path: cur.Path}}
	case action.Help:
		return []Effect{ShowHelp{Mode: e.mode}}
	case action.Quit:
		return e.quit(false)
	case action.ForceQuit:
		return e.quit(true)
	}
	return e.fail(fmt.Errorf("action %s is not supported here", a.Kind))
}

func purposeOf(m action.Mode) textPurpose {
	switch m {
	case action.ModeRename:
		return textRename
	case action.ModeSearch:
		return textSearch
	}
	return textCommand
}

func promptOf(m action.Mode) string {
	switch m {
	case action.ModeRename:
		return "rename: "
	case action.ModeSearch:
		return "/"
	}
	return ":"
}

func (e *Engine) move(a action.Action) {
	switch a.Kind {
	case action.MoveDown:
		e.nav.MoveCursor(a.Times())
	case action.MoveUp:
		e.nav.MoveCursor(-a.Times())
	case action.PageDown:
		e.nav.MoveCursor(a.Times() * e.opts.PageSize)
	case action.PageUp:
		e.nav.MoveCursor(-a.Times() * e.opts.PageSize)
	case action.MoveTop:
		if a.Count > 0 {
			e.nav.MoveToLine(a.Count)
		} else {
			e.nav.MoveToTop()
		}
	case action.MoveBottom:
		if a.Count > 0 {
			e.nav.MoveToLine(a.Count)
		} else {
			e.nav.MoveToBottom()
		}
	}
	if e.mode == action.ModeVisual {
		e.nav.SelectToCursor()
	}
}

func (e *Engine) changeDir(fn func() error) []Effect {
	before := e.nav.Dir()
	if err := fn(); err != nil {
		return e.fail(err)
	}
	if e.nav.Dir() == before {
		return nil
	}
	return []Effect{WatchDirectory{Dir: e.nav.Dir()}}
}

func (e *Engine) quit(force bool) []Effect {
	if force || len(e.running) == 0 && len(e.prompts) == 0 || !e.opts.ConfirmQuit {
		e.quitting = true
		var effects []Effect
		if len(e.running) > 0 {
			effects = append(effects, CancelOperations{})
		}
		return append(effects, Quit{})
	}
	n := len(e.running)
	return e.ask(fmt.Sprintf("%d operation(s) still running. Quit anyway? (y/n)", n), func() []Effect {
		return e.quit(true)
	})
}

func (e *Engine) submit() []Effect {
	text := strings.TrimSpace(e.input)
	purpose := e.purpose
	effects := e.setMode(action.ModeNormal)
	if text == "" && purpose != textSearch {
		return effects
	}
	switch purpose {
	case textRename:
		return append(effects, e.rename(text)...)
	case textSearch:
		if text == "" {
			return effects
		}
		return append(effects, e.apply(action.New(action.Search).WithArg(text))...)
	case textCommand:
		return append(effects, e.runCommand(text)...)
	}
	return effects
}

// HandleText submits text for a text mode as if it had been typed and
// confirmed
func (e *Engine) HandleText(mode action.Mode, text string) []Effect {
	if e.mode != mode {
		e.beginText(mode, purposeOf(mode), promptOf(mode), "")
	}
	e.input = text
	return e.submit()
}

func (e *Engine) cancel() []Effect {
	switch {
	case e.confirming != nil:
		e.confirming = nil
		e.notice = info("cancelled")
	case e.mode == action.ModePrompt && len(e.prompts) > 0:
		return e.decide(operation.Decision{Choice: operation.ChoiceAbort})
	}
	return e.settle()
}

// settle leaves a modal state, returning to any conflict still waiting
func (e *Engine) settle() []Effect {
	if len(e.prompts) > 0 {
		return e.setMode(action.ModePrompt)
	}
	return e.setMode(action.ModeNormal)
}

func (e *Engine) confirm(arg string) []Effect {
	if e.mode == action.ModePrompt {
		d, err := parseDecision(arg)
		if err != nil {
			return e.fail(err)
		}
		return e.decide(d)
	}
	c := e.confirming
	if c == nil {
		return e.setMode(action.ModeNormal)
	}
	e.confirming = nil
	effects := e.settle()
	return append(effects, c.yes()...)
}

func parseDecision(arg string) (operation.Decision, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return operation.Decision{}, fmt.Errorf("confirm needs overwrite, skip or rename here")
	}
	d := operation.Decision{ApplyToAll: len(fields) > 1 && fields[1] == "all"}
	switch fields[0] {
	case "overwrite":
		d.Choice = operation.ChoiceOverwrite
	case "skip":
		d.Choice = operation.ChoiceSkip
	case "rename":
		d.Choice = operation.ChoiceRename
	case "abort":
		d.Choice = operation.ChoiceAbort
	default:
		return d, fmt.Errorf("unknown decision %q", fields[0])
	}
	return d, nil
}
