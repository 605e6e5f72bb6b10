package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filephile/internal/config"
	apperrors "filephile/internal/errors"
	"filephile/internal/fsys"
	"filephile/internal/input/action"
	"filephile/internal/input/key"
	"filephile/internal/nav"
	"filephile/internal/operation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvoker struct {
	calls [][]string
}

func (s *stubInvoker) Invoke(_ context.Context, argv []string, _ string) (int, error) {
	s.calls = append(s.calls, argv)
	return 0, nil
}

type harness struct {
	t       *testing.T
	dir     string
	eng     *Engine
	exec    *operation.Executor
	invoker *stubInvoker
	// hold keeps StartOperation effects undriven until release
	hold []*operation.Pending
	held bool
}

// newHarness builds an engine over a temp directory. Names ending in "/"
// become directories.
func newHarness(t *testing.T, tweak func(*config.Config), names ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		path := filepath.Join(dir, n)
		if strings.HasSuffix(n, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(n), 0644))
	}

	cfg := config.DefaultConfig()
	cfg.Sort = "name"
	cfg.EditorCommand = "vi"
	if tweak != nil {
		tweak(cfg)
	}
	require.NoError(t, config.Validate(cfg))
	table, err := config.BuildTable(cfg)
	require.NoError(t, err)

	provider := fsys.NewOS()
	inv := &stubInvoker{}
	exec := operation.NewExecutor(provider, nil, inv, cfg.ExecutorOptions())
	eng := New(nav.New(provider, cfg.NavOptions()), table, exec, Options{ConfirmQuit: cfg.ConfirmQuit})
	_, err = eng.Start(dir)
	require.NoError(t, err)
	return &harness{t: t, dir: dir, eng: eng, exec: exec, invoker: inv}
}

// run carries out StartOperation effects synchronously, the way the UI
// does asynchronously, and returns every effect seen
func (h *harness) run(effects []Effect) []Effect {
	var out []Effect
	for _, eff := range effects {
		out = append(out, eff)
		start, ok := eff.(StartOperation)
		if !ok {
			continue
		}
		if h.held {
			h.hold = append(h.hold, start.Pending)
			continue
		}
		res := h.exec.Drive(context.Background(), start.Pending)
		out = append(out, h.run(h.eng.HandleResult(res))...)
	}
	return out
}

func (h *harness) keys(spec string) []Effect {
	h.t.Helper()
	var out []Effect
	for _, ev := range key.MustParseSequence(spec) {
		out = append(out, h.run(h.eng.HandleKey(ev))...)
	}
	return out
}

func (h *harness) text(mode action.Mode, s string) []Effect {
	return h.run(h.eng.HandleText(mode, s))
}

func (h *harness) current() string {
	cur, ok := h.eng.nav.Current()
	if !ok {
		return ""
	}
	return cur.Name
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func hasEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

func TestMoveAndSequence(t *testing.T) {
	h := newHarness(t, nil, "a.txt", "b.txt", "dir1/")

	h.keys("j")
	assert.Equal(t, "b.txt", h.current())

	effects := h.eng.HandleKey(key.Rune('g'))
	require.Len(t, effects, 1)
	timeout, ok := effects[0].(ScheduleTimeout)
	require.True(t, ok)
	assert.Equal(t, h.eng.Table().SequenceTimeout(), timeout.After)
	assert.Equal(t, "g", h.eng.View().PendingKeys)

	h.run(h.eng.HandleKey(key.Rune('g')))
	assert.Equal(t, "a.txt", h.current())
	assert.Empty(t, h.eng.View().PendingKeys)
}

func TestBoundPrefixFiresWhenNextKeyBreaksIt(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config) {
		cfg.StrictPrefixes = false
		cfg.Bindings = append(cfg.Bindings, config.Binding{Mode: "normal", Keys: "d", Action: "copy"})
	}, "a.txt", "b.txt", "c.txt")

	h.keys("dj")
	assert.Equal(t, 1, h.eng.View().Register)
	assert.False(t, h.eng.View().RegisterCut)
	assert.Equal(t, "b.txt", h.current())
	assert.Empty(t, h.eng.View().PendingKeys)
	assert.Empty(t, h.eng.Notice().Text)

	h.keys("dd")
	assert.True(t, h.eng.View().RegisterCut)
}

func TestCountPrefix(t *testing.T) {
	h := newHarness(t, nil, "a", "b", "c", "d", "e", "f")

	h.keys("2j")
	assert.Equal(t, "c", h.current())

	h.keys("5G")
	assert.Equal(t, "e", h.current())

	h.keys("G")
	assert.Equal(t, "f", h.current())
}

func TestUnboundKeyIsNotice(t *testing.T) {
	h := newHarness(t, nil, "a")

	h.keys("x")
	n := h.eng.Notice()
	assert.Equal(t, LevelWarn, n.Level)
	assert.Equal(t, apperrors.NoBinding, apperrors.KindOf(n.Err))
	assert.Equal(t, "a", h.current())
}

func TestSequenceTimeoutDropsPrefix(t *testing.T) {
	h := newHarness(t, nil, "a", "b")
	h.keys("j")

	effects := h.eng.HandleKey(key.Rune('g'))
	timeout := effects[0].(ScheduleTimeout)

	assert.Nil(t, h.eng.HandleTimeout(timeout.Generation-1), "stale timers are ignored")
	h.eng.HandleTimeout(timeout.Generation)
	assert.Equal(t, apperrors.NoBinding, apperrors.KindOf(h.eng.Notice().Err))
	assert.Equal(t, "b", h.current())

	// the next key starts fresh
	h.keys("k")
	assert.Equal(t, "a", h.current())
}

func TestEscapeResetsPending(t *testing.T) {
	h := newHarness(t, nil, "a", "b")
	h.keys("3g<Esc>")
	assert.Empty(t, h.eng.View().PendingKeys)
	assert.Zero(t, h.eng.View().Count)
	assert.Nil(t, h.eng.Notice().Err)
}

func TestRenameKeepsSelectionAndMarks(t *testing.T) {
	h := newHarness(t, nil, "a.txt", "b.txt")

	h.keys("<Space>")
	h.keys("k")
	h.keys("ma")
	require.Equal(t, "a.txt", h.current())

	effects := h.keys("cw")
	require.True(t, hasEffect[BeginTextInput](effects))
	assert.Equal(t, action.ModeRename, h.eng.Mode())
	assert.Equal(t, "a.txt", h.eng.input)

	effects = h.text(action.ModeRename, "z.txt")
	assert.True(t, hasEffect[EndTextInput](effects))
	assert.Equal(t, action.ModeNormal, h.eng.Mode())

	snap := h.eng.nav.Snapshot()
	assert.True(t, snap.Selected[h.path("z.txt")])
	assert.False(t, snap.Selected[h.path("a.txt")])
	assert.Equal(t, h.path("z.txt"), snap.Marks["a"])
	assert.Equal(t, "z.txt", h.current())
	assert.FileExists(t, h.path("z.txt"))
	assert.NoFileExists(t, h.path("a.txt"))
}

func TestRenameCollisionAsksBeforeOverwriting(t *testing.T) {
	h := newHarness(t, nil, "a.txt", "b.txt")

	h.text(action.ModeRename, "b.txt")
	assert.True(t, apperrors.IsAlreadyExists(h.eng.Notice().Err))
	assert.Equal(t, action.ModeConfirm, h.eng.Mode())
	assert.FileExists(t, h.path("a.txt"))
	assert.Equal(t, "b.txt", readTestFile(t, h.path("b.txt")))

	h.keys("n")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.FileExists(t, h.path("a.txt"))

	h.text(action.ModeRename, "b.txt")
	h.keys("y")
	assert.NoFileExists(t, h.path("a.txt"))
	assert.Equal(t, "a.txt", readTestFile(t, h.path("b.txt")))
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newHarness(t, nil, "a", "b", "c")

	h.keys("<Space>j<Space>")
	h.keys("D")
	assert.Equal(t, action.ModeConfirm, h.eng.Mode())
	assert.Contains(t, h.eng.View().Prompt, "delete 2 items")
	assert.FileExists(t, h.path("a"))

	h.keys("y")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.NoFileExists(t, h.path("a"))
	assert.NoFileExists(t, h.path("b"))
	assert.FileExists(t, h.path("c"))
	assert.Len(t, h.eng.nav.Entries(), 1)
}

func TestDeleteDeclined(t *testing.T) {
	h := newHarness(t, nil, "a")
	h.keys("D")
	h.keys("<Esc>")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.FileExists(t, h.path("a"))
	assert.Zero(t, h.eng.Running())
}

func TestVisualDelete(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.ConfirmDelete = false }, "a", "b", "c")
	h.keys("vj")
	assert.Equal(t, action.ModeVisual, h.eng.Mode())
	h.keys("D")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.NoFileExists(t, h.path("a"))
	assert.NoFileExists(t, h.path("b"))
	assert.FileExists(t, h.path("c"))
}

func TestPasteConflictPrompts(t *testing.T) {
	h := newHarness(t, nil, "src/x", "src/y", "dst/x")

	h.text(action.ModeCommand, "cd src")
	h.keys("<C-a>yy")
	assert.Equal(t, 2, h.eng.View().Register)

	h.text(action.ModeCommand, "cd ../dst")
	h.keys("p")
	assert.Equal(t, action.ModePrompt, h.eng.Mode())
	assert.Contains(t, h.eng.View().Prompt, filepath.Join(h.dir, "dst", "x"))
	assert.Equal(t, 1, h.eng.Running())

	h.keys("o")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.Zero(t, h.eng.Running())
	assert.Equal(t, "src/x", readTestFile(t, h.path("dst/x")))
	assert.FileExists(t, h.path("dst/y"))
	assert.FileExists(t, h.path("src/x"), "copy leaves the source")
}

func TestPasteConflictAbort(t *testing.T) {
	h := newHarness(t, nil, "src/x", "dst/x")
	h.text(action.ModeCommand, "cd src")
	h.keys("yy")
	h.text(action.ModeCommand, "cd ../dst")
	h.keys("p")
	require.Equal(t, action.ModePrompt, h.eng.Mode())

	h.keys("a")
	assert.Equal(t, action.ModeNormal, h.eng.Mode())
	assert.Zero(t, h.eng.Running())
	assert.Equal(t, "dst/x", readTestFile(t, h.path("dst/x")))
	assert.Equal(t, LevelWarn, h.eng.Notice().Level)
}

func TestCutPasteMovesAndUndo(t *testing.T) {
	h := newHarness(t, nil, "src/x", "dst/")
	h.text(action.ModeCommand, "cd src")
	h.keys("dd")
	h.text(action.ModeCommand, "cd ../dst")
	h.keys("p")

	assert.FileExists(t, h.path("dst/x"))
	assert.NoFileExists(t, h.path("src/x"))
	assert.Zero(t, h.eng.View().Register, "cut entries paste once")
	assert.True(t, h.eng.View().CanUndo)

	h.keys("u")
	assert.FileExists(t, h.path("src/x"))
	assert.NoFileExists(t, h.path("dst/x"))
	assert.False(t, h.eng.View().CanUndo)

	h.keys("u")
	assert.Equal(t, apperrors.EmptyHistory, apperrors.KindOf(h.eng.Notice().Err))
}

func TestQuitAsksWhileRunning(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.ConfirmDelete = false }, "a")
	h.held = true
	h.keys("D")
	require.Equal(t, 1, h.eng.Running())

	effects := h.keys("q")
	assert.False(t, hasEffect[Quit](effects))
	assert.Equal(t, action.ModeConfirm, h.eng.Mode())

	effects = h.keys("y")
	assert.True(t, hasEffect[CancelOperations](effects))
	assert.True(t, hasEffect[Quit](effects))
}

func TestQuitWhenIdle(t *testing.T) {
	h := newHarness(t, nil, "a")
	assert.True(t, hasEffect[Quit](h.keys("q")))
}

func TestCancelOperation(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.ConfirmDelete = false }, "a", "b")
	h.held = true
	h.keys("<C-a>D")
	require.Len(t, h.hold, 1)

	effects := h.keys("<C-c>")
	require.True(t, hasEffect[CancelOperations](effects))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := h.exec.Drive(ctx, h.hold[0])
	h.eng.HandleResult(res)
	assert.Zero(t, h.eng.Running())
	assert.Equal(t, LevelWarn, h.eng.Notice().Level)
	assert.Contains(t, h.eng.Notice().Text, "2 not attempted")
	assert.FileExists(t, h.path("a"))
}

func TestProgressIsOrdered(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.ConfirmDelete = false }, "a", "b", "c")
	h.held = true
	h.keys("D")
	h.keys("j")
	h.keys("D")
	require.Len(t, h.hold, 2)

	views := h.eng.View().Operations
	require.Len(t, views, 2)
	assert.Equal(t, h.hold[0].ID, views[0].ID)
	assert.Equal(t, h.hold[1].ID, views[1].ID)
}

func TestCommandMode(t *testing.T) {
	h := newHarness(t, nil, "a.txt", "b.go")

	effects := h.keys(":")
	require.True(t, hasEffect[BeginTextInput](effects))
	assert.True(t, hasEffect[PassThrough](h.keys("m")), "printable keys go to the text field")

	h.text(action.ModeCommand, "mkdir new")
	assert.DirExists(t, h.path("new"))
	assert.Equal(t, "new", h.current())

	h.text(action.ModeCommand, "select *.go")
	assert.Equal(t, []string{h.path("b.go")}, h.eng.nav.Targets())

	h.text(action.ModeCommand, "sort size reverse")
	assert.Equal(t, nav.SortOrder{Criterion: nav.SortBySize, Reverse: true}, h.eng.nav.SortOrder())

	h.text(action.ModeCommand, "mkdri x")
	assert.Contains(t, h.eng.Notice().Text, `did you mean "mkdir"`)

	h.text(action.ModeCommand, "run wc -l {}")
	require.Len(t, h.invoker.calls, 1)
	assert.Equal(t, []string{"wc", "-l", h.path("b.go")}, h.invoker.calls[0])
}

func TestMarkWaitsForNextKey(t *testing.T) {
	h := newHarness(t, nil, "a", "b", "sub/")
	h.keys("j")
	effects := h.keys("m")
	assert.Empty(t, effects)
	assert.Equal(t, "set_mark", h.eng.View().AwaitingArg)
	h.keys("x")
	assert.Empty(t, h.eng.View().AwaitingArg)

	h.keys("gg")
	assert.Equal(t, "a", h.current())
	assert.Empty(t, h.keys("'x"))
	assert.Equal(t, "b", h.current())

	h.keys("Gl")
	require.Equal(t, h.path("sub"), h.eng.nav.Dir())
	effects = h.keys("'x")
	assert.Equal(t, []Effect{WatchDirectory{Dir: h.dir}}, effects)
	assert.Equal(t, "b", h.current())
}

func TestSearchAndHelp(t *testing.T) {
	h := newHarness(t, nil, "alpha", "beta", "gamma")
	h.keys("/")
	assert.Equal(t, action.ModeSearch, h.eng.Mode())
	h.text(action.ModeSearch, "gam")
	assert.Equal(t, "gamma", h.current())

	effects := h.keys("?")
	require.Len(t, effects, 1)
	assert.Equal(t, ShowHelp{Mode: action.ModeNormal}, effects[0])
}

func TestYankPathAndPreview(t *testing.T) {
	h := newHarness(t, nil, "a.txt", "dir/")
	effects := h.keys("yp")
	require.Len(t, effects, 2)
	assert.IsType(t, ScheduleTimeout{}, effects[0])
	assert.Equal(t, CopyToClipboard{Text: h.path("a.txt")}, effects[1])

	effects = h.keys("i")
	require.Len(t, effects, 1)
	assert.Equal(t, h.path("a.txt"), effects[0].(OpenPager).Path)
}

func TestEnterOpensFilesWithEditor(t *testing.T) {
	h := newHarness(t, nil, "a.txt")
	h.keys("<Enter>")
	require.Len(t, h.invoker.calls, 1)
	assert.Equal(t, []string{"vi", h.path("a.txt")}, h.invoker.calls[0])
}
