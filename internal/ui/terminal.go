package ui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"filephile/internal/log"
	"filephile/internal/operation"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"
)

// Terminal hands the screen to other programs: external commands and the
// pager. Only one of them owns the terminal at a time.
type Terminal struct {
	mu      sync.Mutex
	program *tea.Program
	runner  operation.Invoker
}

// NewTerminal creates a terminal handoff around runner. A nil runner runs
// commands with the inherited stdio.
func NewTerminal(runner operation.Invoker) *Terminal {
	if runner == nil {
		runner = operation.ExecInvoker{}
	}
	return &Terminal{runner: runner}
}

// SetProgram sets the program reference for terminal management
func (t *Terminal) SetProgram(p *tea.Program) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.program = p
}

// release gives up the screen and returns the function that takes it back
func (t *Terminal) release() (func(), error) {
	if t.program == nil {
		return func() {}, nil
	}
	if err := t.program.ReleaseTerminal(); err != nil {
		return nil, err
	}
	return func() {
		// clear what the child left behind before redrawing
		fmt.Print("\x1b[2J\x1b[H")
		time.Sleep(100 * time.Millisecond)
		if err := t.program.RestoreTerminal(); err != nil {
			log.LogWithError(err).Warn("failed to restore terminal")
		}
	}, nil
}

// Invoke runs argv in dir with the terminal handed over to it. It is the
// Invoker the executor uses for run_external and open.
func (t *Terminal) Invoke(ctx context.Context, argv []string, dir string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	restore, err := t.release()
	if err != nil {
		return -1, err
	}
	defer restore()

	log.LogWithFields(log.F("argv", strings.Join(argv, " ")), log.F("dir", dir)).Info("running external command")
	return t.runner.Invoke(ctx, argv, dir)
}

// ShowFile opens path in the pager
func (t *Terminal) ShowFile(path string) error {
	root, err := oviewer.Open(path)
	if err != nil {
		return err
	}
	return t.runPager(root)
}

// ShowText opens content in the pager
func (t *Terminal) ShowText(content string) error {
	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}
	return t.runPager(root)
}

func (t *Terminal) runPager(root *oviewer.Root) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	restore, err := t.release()
	if err != nil {
		return err
	}
	defer restore()

	// keep ov from printing the document over our screen on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
