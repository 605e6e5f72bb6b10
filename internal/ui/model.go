package ui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"filephile/internal/config"
	"filephile/internal/dispatch"
	"filephile/internal/eventbus"
	"filephile/internal/fsys"
	"filephile/internal/input/action"
	"filephile/internal/log"
	"filephile/internal/operation"
	"filephile/internal/ui/views"
)

// Model is the bubbletea model. It owns the dispatch engine and turns its
// effects into commands; everything that touches navigation state happens
// in Update.
type Model struct {
	eng    *dispatch.Engine
	exec   *operation.Executor
	config *config.Config

	width  int
	height int
	offset int

	input     textinput.Model
	inputOpen bool
	help      help.Model
	helpText  *HelpRenderer
	renderer  *views.Renderer

	cancels  map[string]context.CancelFunc
	terminal *Terminal
	watcher  *fsys.Watcher
	copyText func(string) error

	startup []dispatch.Effect
}

// Option configures a Model
type Option func(*Model)

// WithTerminal hands external programs and the pager the screen through t
func WithTerminal(t *Terminal) Option {
	return func(m *Model) { m.terminal = t }
}

// WithWatcher follows the browsed directory with w
func WithWatcher(w *fsys.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithClipboard replaces the system clipboard writer
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copyText = write }
}

// NewModel creates a new UI model. startup holds the effects returned by
// the engine's Start.
func NewModel(eng *dispatch.Engine, exec *operation.Executor, cfg *config.Config, startup []dispatch.Effect, opts ...Option) *Model {
	ti := textinput.New()
	ti.Prompt = ":"

	m := &Model{
		eng:      eng,
		exec:     exec,
		config:   cfg,
		input:    ti,
		help:     help.New(),
		helpText: NewHelpRenderer(eng.Table()),
		renderer: views.NewRenderer(),
		cancels:  make(map[string]context.CancelFunc),
		copyText: clipboard.WriteAll,
		startup:  startup,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.terminal == nil {
		m.terminal = NewTerminal(nil)
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.terminal.SetProgram(p)
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return m.run(m.startup)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 4
		m.eng.SetPageSize(views.ListHeight(m.height) - 1)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyRunes && !msg.Paste && len(msg.Runes) > 1 {
			return m, m.splitRunes(msg)
		}
		ev, ok := toEvent(msg)
		if !ok {
			if m.inputOpen {
				return m, m.typeInto(msg)
			}
			return m, nil
		}
		effects := m.eng.HandleKey(ev)
		cmds := []tea.Cmd{m.run(effects)}
		for _, eff := range effects {
			if _, ok := eff.(dispatch.PassThrough); ok && m.inputOpen {
				cmds = append(cmds, m.typeInto(msg))
			}
		}
		return m, tea.Batch(cmds...)

	case timeoutMsg:
		return m, m.run(m.eng.HandleTimeout(msg.generation))

	case resultMsg:
		if cancel, ok := m.cancels[msg.res.ID]; ok {
			cancel()
			delete(m.cancels, msg.res.ID)
		}
		return m, m.run(m.eng.HandleResult(msg.res))

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case pagerDoneMsg:
		if msg.err != nil {
			m.eng.Report(msg.err)
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.eng.Report(msg.err)
		}
		return m, nil
	}

	if m.inputOpen {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// splitRunes handles keys typed faster than the terminal is read, which
// arrive as one message, one keypress at a time
func (m *Model) splitRunes(msg tea.KeyMsg) tea.Cmd {
	var cmds []tea.Cmd
	for _, r := range msg.Runes {
		single := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: msg.Alt}
		if r == ' ' {
			single.Type = tea.KeySpace
		}
		_, cmd := m.Update(single)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// typeInto hands a keypress to the text field and mirrors its contents to
// the engine
func (m *Model) typeInto(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.eng.SetInput(m.input.Value())
	return cmd
}

func (m *Model) handleEvent(ev eventbus.DomainEvent) tea.Cmd {
	switch e := ev.(type) {
	case eventbus.OperationProgressEvent:
		m.eng.HandleProgress(e.Progress)
	case eventbus.DirectoryChangedEvent:
		if m.config.AutoRefresh && e.Dir == m.eng.View().Nav.Dir {
			return m.run(m.eng.Dispatch(action.New(action.Refresh)))
		}
	case eventbus.ErrorEvent:
		if e.Err != nil {
			m.eng.Report(e.Err)
		}
	}
	return nil
}

// run carries out engine effects
func (m *Model) run(effects []dispatch.Effect) tea.Cmd {
	var cmds []tea.Cmd
	for _, eff := range effects {
		if cmd := m.perform(eff); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m *Model) perform(eff dispatch.Effect) tea.Cmd {
	switch e := eff.(type) {
	case dispatch.ScheduleTimeout:
		gen := e.Generation
		return tea.Tick(e.After, func(time.Time) tea.Msg { return timeoutMsg{generation: gen} })

	case dispatch.StartOperation:
		return m.drive(e.Pending)

	case dispatch.CancelOperations:
		for id, cancel := range m.cancels {
			cancel()
			delete(m.cancels, id)
		}
		return nil

	case dispatch.BeginTextInput:
		m.input.Prompt = e.Prompt
		m.input.SetValue(e.Initial)
		m.input.CursorEnd()
		m.inputOpen = true
		return m.input.Focus()

	case dispatch.EndTextInput:
		m.input.Blur()
		m.input.SetValue("")
		m.inputOpen = false
		return nil

	case dispatch.OpenPager:
		return m.page(e)

	case dispatch.ShowHelp:
		return m.page(dispatch.OpenPager{Title: "help", Content: m.helpText.RenderHelpContent(e.Mode)})

	case dispatch.CopyToClipboard:
		text, write := e.Text, m.copyText
		return func() tea.Msg { return clipboardMsg{err: write(text)} }

	case dispatch.WatchDirectory:
		if m.watcher != nil {
			if err := m.watcher.Watch(e.Dir); err != nil {
				log.LogWithError(err).Warn("could not watch directory")
			}
		}
		return nil

	case dispatch.Quit:
		return tea.Quit
	}
	return nil
}

// drive runs an operation off the update goroutine. The result comes back
// as a resultMsg so it is folded in Update.
func (m *Model) drive(p *operation.Pending) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	if old, ok := m.cancels[p.ID]; ok {
		old()
	}
	m.cancels[p.ID] = cancel
	exec := m.exec
	return func() tea.Msg {
		return resultMsg{res: exec.Drive(ctx, p)}
	}
}

func (m *Model) page(e dispatch.OpenPager) tea.Cmd {
	t := m.terminal
	return func() tea.Msg {
		if e.Path != "" {
			return pagerDoneMsg{err: t.ShowFile(e.Path)}
		}
		return pagerDoneMsg{err: t.ShowText(e.Content)}
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	v := m.eng.View()

	listHeight := views.ListHeight(m.height)
	scrollOff := m.config.ScrollOff
	if scrollOff < 1 {
		// the edge rows double as scroll indicators
		scrollOff = 1
	}
	m.offset = views.ScrollOffset(m.offset, v.Nav.Cursor, len(v.Nav.Entries), listHeight, scrollOff)

	state := views.ViewState{
		Width:     m.width,
		Height:    m.height,
		Offset:    m.offset,
		Engine:    v,
		HelpModel: m.help,
		HelpKeys:  m.helpText.ShortHelp(v.Mode),
	}
	if m.inputOpen {
		state.TextInput = m.input.View()
	}
	return m.renderer.Render(state)
}

// Summary is a plain text rendering of the listing, one entry per line,
// for tests and logs
func (m *Model) Summary() string {
	v := m.eng.View()
	var b strings.Builder
	for i, e := range v.Nav.Entries {
		if i == v.Nav.Cursor {
			b.WriteString("> ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(e.Name)
		b.WriteString("\n")
	}
	return b.String()
}
