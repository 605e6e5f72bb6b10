package operation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Invoker runs an external program. The terminal UI supplies one that
// hands the terminal to the child for the duration of the call.
type Invoker interface {
	Invoke(ctx context.Context, argv []string, dir string) (exitCode int, err error)
}

// ExecInvoker runs programs with the process's own stdio
type ExecInvoker struct{}

// Invoke runs argv in dir and waits for it
func (ExecInvoker) Invoke(ctx context.Context, argv []string, dir string) (int, error) {
	if len(argv) == 0 {
		return -1, fmt.Errorf("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Expand splits a command template into argv. A word that is exactly {}
// becomes one argument per target path, {} inside a word is replaced by the
// space-joined paths and {cwd} by dir. Environment variables are expanded
// per word after splitting, so values are never re-split. A template
// without {} gets the paths appended.
func Expand(template string, paths []string, dir string) ([]string, error) {
	words, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", template, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("invalid command %q: empty", template)
	}
	placeholder := strings.Contains(template, "{}")
	argv := make([]string, 0, len(words)+len(paths))
	for _, w := range words {
		if w == "{}" {
			argv = append(argv, paths...)
			continue
		}
		w = os.ExpandEnv(w)
		w = strings.ReplaceAll(w, "{cwd}", dir)
		w = strings.ReplaceAll(w, "{}", strings.Join(paths, " "))
		argv = append(argv, w)
	}
	if !placeholder {
		argv = append(argv, paths...)
	}
	return argv, nil
}
