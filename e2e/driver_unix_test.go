//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
)

const ringSize = 1 << 20 // 1 MiB of scrollback

var binPath = "filephile_e2e"

// Key constants for better readability
const (
	KeyEnter  = "\r"
	KeyEscape = "\x1b"
	KeyCtrlC  = "\x03"
	KeySpace  = " "
	KeyDown   = "j"
	KeyUp     = "k"
	KeyParent = "h"
	KeyQuit   = "q"
)

// ANSI escape sequence regex for normalization - covers CSI, OSC, charset, keypad modes
var ansiRe = regexp.MustCompile(
	`(?:\x1b\[[0-9;?]*[ -/]*[@-~])|` + // CSI sequences
		`(?:\x1b\][^\x07]*\x07)|` + // OSC sequences
		`(?:\x1b[\(\)][A-Za-z])|` + // charset sequences
		`(?:\x1b=|\x1b>)|` + // keypad mode sequences
		`\r`, // carriage returns
)

// Browser drives the filephile binary through a pty
type Browser struct {
	t         *testing.T
	pty       *os.File
	cmd       *exec.Cmd
	workspace string
	home      string
	done      chan error

	// Ring buffer for continuous output capture
	mu   sync.Mutex
	buf  []byte
	head int
	full bool
	mark int // output length when Mark was last called
}

// NewBrowser creates a driver with an empty workspace and an isolated $HOME
func NewBrowser(t *testing.T) *Browser {
	b := &Browser{
		t:         t,
		buf:       make([]byte, ringSize),
		workspace: t.TempDir(),
		home:      t.TempDir(),
	}
	t.Cleanup(b.Cleanup)
	return b
}

// Workspace returns the directory the browser is started in
func (b *Browser) Workspace() string { return b.workspace }

// Start launches filephile on the workspace with extra arguments
func (b *Browser) Start(args ...string) error {
	args = append(args, "--log-file", filepath.Join(b.home, "filephile.log"), b.workspace)
	b.cmd = exec.Command(binPath, args...)
	b.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"LANG=C",
		"HOME="+b.home, // isolate $HOME
		"XDG_CONFIG_HOME="+filepath.Join(b.home, ".config"),
		"XDG_CACHE_HOME="+filepath.Join(b.home, ".cache"),
		"EDITOR=cat",
		"PAGER=cat",
	)

	ptmx, err := pty.StartWithSize(b.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	if err != nil {
		return fmt.Errorf("failed to start filephile: %w", err)
	}
	b.pty = ptmx
	b.done = make(chan error, 1)
	go func() { b.done <- b.cmd.Wait() }()

	b.startReader()
	return nil
}

// startReader copies pty output into the ring buffer until the pty closes
func (b *Browser) startReader() {
	go func() {
		buf := make([]byte, 8192)
		for {
			n, err := b.pty.Read(buf)
			if n > 0 {
				b.mu.Lock()
				for i := 0; i < n; i++ {
					b.buf[b.head] = buf[i]
					b.head = (b.head + 1) % ringSize
					if b.head == 0 {
						b.full = true
					}
				}
				b.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()
}

// Send writes raw keystrokes to the application
func (b *Browser) Send(keys string) {
	b.t.Helper()
	if _, err := b.pty.Write([]byte(keys)); err != nil {
		b.t.Fatalf("writing keys %q: %v", keys, err)
	}
}

// Type sends keys one at a time so each arrives as its own keypress
func (b *Browser) Type(keys string) {
	b.t.Helper()
	for _, r := range keys {
		b.Send(string(r))
		time.Sleep(10 * time.Millisecond)
	}
}

// Ready waits for the first frame of the listing
func (b *Browser) Ready() bool {
	b.t.Helper()
	return b.SeePlain("NORMAL")
}

// Mark forgets the output seen so far; SeeNew only looks after it
func (b *Browser) Mark() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mark = len(b.snapshot())
}

// SeePlain waits for specific plain text to appear anywhere in the output
func (b *Browser) SeePlain(text string) bool {
	b.t.Helper()
	return b.WaitFor(func(s string) bool { return strings.Contains(s, text) }, 3*time.Second)
}

// SeeNew waits for text to appear after the last Mark
func (b *Browser) SeeNew(text string) bool {
	b.t.Helper()
	return b.WaitFor(func(s string) bool {
		b.mu.Lock()
		mark := b.mark
		b.mu.Unlock()
		raw := b.Snapshot()
		if mark > len(raw) {
			mark = 0
		}
		return strings.Contains(ansiRe.ReplaceAllString(raw[mark:], ""), text)
	}, 3*time.Second)
}

// WaitFor polls the normalized output until pred holds or timeout passes
func (b *Browser) WaitFor(pred func(string) bool, timeout time.Duration) bool {
	b.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		if pred(b.SnapshotPlain()) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(25 * time.Millisecond) // simple, reliable polling; tests only
	}
}

// WaitExit waits for the process to end and returns its exit error
func (b *Browser) WaitExit(timeout time.Duration) (bool, error) {
	select {
	case err := <-b.done:
		b.cmd = nil
		return true, err
	case <-time.After(timeout):
		return false, nil
	}
}

// Snapshot returns the current contents of the ring buffer (thread-safe)
func (b *Browser) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// snapshot assumes b.mu is held
func (b *Browser) snapshot() string {
	if !b.full {
		return string(b.buf[:b.head])
	}
	out := make([]byte, ringSize)
	copy(out, b.buf[b.head:])
	copy(out[ringSize-b.head:], b.buf[:b.head])
	return string(out)
}

// SnapshotPlain returns the output with ANSI sequences removed
func (b *Browser) SnapshotPlain() string {
	return ansiRe.ReplaceAllString(b.Snapshot(), "")
}

// Tail returns the last n bytes of plain output for failure messages
func (b *Browser) Tail(n int) string {
	s := b.SnapshotPlain()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

// File creates a file under the workspace
func (b *Browser) File(name, content string) string {
	b.t.Helper()
	path := filepath.Join(b.workspace, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		b.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		b.t.Fatal(err)
	}
	return path
}

// Dir creates a directory under the workspace
func (b *Browser) Dir(name string) string {
	b.t.Helper()
	path := filepath.Join(b.workspace, name)
	if err := os.MkdirAll(path, 0755); err != nil {
		b.t.Fatal(err)
	}
	return path
}

// Config writes a config file under $HOME and returns its path
func (b *Browser) Config(content string) string {
	b.t.Helper()
	path := filepath.Join(b.home, "filephile.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		b.t.Fatal(err)
	}
	return path
}

// Cleanup closes the pty and kills the application if it is still running
func (b *Browser) Cleanup() {
	// Close PTY first to deliver SIGHUP to child process
	if b.pty != nil {
		_ = b.pty.Close()
		b.pty = nil
	}
	if b.cmd != nil && b.cmd.Process != nil {
		_ = b.cmd.Process.Kill()
		select {
		case <-b.done:
		case <-time.After(2 * time.Second):
		}
		b.cmd = nil
	}
}
