package dispatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"filephile/internal/input/action"
	"filephile/internal/nav"

	"github.com/google/shlex"
)

// command is one ":" command. args are shell-split; raw is everything after
// the command name, untouched.
type command func(e *Engine, args []string, raw string) []Effect

var commands map[string]command

// commands refer back into the engine, so the table is filled at init
func init() {
	commands = map[string]command{
		"cd":     cmdCd,
		"copy":   transferCmd(action.CopyTo),
		"cp":     transferCmd(action.CopyTo),
		"move":   transferCmd(action.MoveTo),
		"mv":     transferCmd(action.MoveTo),
		"mkdir":  createCmd(action.CreateDir),
		"touch":  createCmd(action.CreateFile),
		"rename": cmdRename,
		"select": cmdSelect,
		"filter": cmdFilter,
		"sort":   cmdSort,
		"mark":   markCmd(action.SetMark),
		"jump":   markCmd(action.JumpToMark),
		"run":    cmdRun,
		"delete": func(e *Engine, _ []string, _ string) []Effect { return e.plan(action.New(action.Delete)) },
		"hidden": func(e *Engine, _ []string, _ string) []Effect { return e.apply(action.New(action.ToggleHidden)) },
		"q":      func(e *Engine, _ []string, _ string) []Effect { return e.quit(false) },
		"quit":   func(e *Engine, _ []string, _ string) []Effect { return e.quit(false) },
		"q!":     func(e *Engine, _ []string, _ string) []Effect { return e.quit(true) },
		"quit!":  func(e *Engine, _ []string, _ string) []Effect { return e.quit(true) },
	}
}

// CommandNames lists the ":" commands, sorted
func CommandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// runCommand executes a command line. Besides the built-in commands, any
// action name with its argument is accepted.
func (e *Engine) runCommand(line string) []Effect {
	name, raw, _ := strings.Cut(strings.TrimSpace(line), " ")
	raw = strings.TrimSpace(raw)
	if cmd, ok := commands[name]; ok {
		args, err := shlex.Split(raw)
		if err != nil {
			return e.fail(fmt.Errorf("%s: %w", name, err))
		}
		return cmd(e, args, raw)
	}
	if _, ok := action.Lookup(name); ok {
		a, err := action.Parse(line)
		if err != nil {
			return e.fail(err)
		}
		return e.apply(a)
	}
	candidates := append(CommandNames(), action.Names()...)
	if s := action.Suggest(name, candidates); s != "" {
		return e.fail(fmt.Errorf("unknown command %q (did you mean %q?)", name, s))
	}
	return e.fail(fmt.Errorf("unknown command %q", name))
}

func oneArg(name string, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one argument", name)
	}
	return args[0], nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func cmdCd(e *Engine, args []string, _ string) []Effect {
	target := "~"
	if len(args) > 0 {
		target = args[0]
	}
	target = expandHome(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(e.nav.Dir(), target)
	}
	return e.changeDir(func() error { return e.nav.EnterDirectory(filepath.Clean(target)) })
}

func transferCmd(kind action.Kind) command {
	return func(e *Engine, args []string, _ string) []Effect {
		dest, err := oneArg(kind.String(), args)
		if err != nil {
			return e.fail(err)
		}
		return e.plan(action.New(kind).WithArg(expandHome(dest)))
	}
}

func createCmd(kind action.Kind) command {
	return func(e *Engine, args []string, _ string) []Effect {
		name, err := oneArg(kind.String(), args)
		if err != nil {
			return e.fail(err)
		}
		return e.plan(action.New(kind).WithArg(name))
	}
}

func cmdRename(e *Engine, args []string, _ string) []Effect {
	name, err := oneArg("rename", args)
	if err != nil {
		return e.fail(err)
	}
	return e.rename(name)
}

func cmdSelect(e *Engine, args []string, _ string) []Effect {
	pattern, err := oneArg("select", args)
	if err != nil {
		return e.fail(err)
	}
	return e.apply(action.New(action.SelectGlob).WithArg(pattern))
}

// filter with no pattern clears the filter
func cmdFilter(e *Engine, _ []string, raw string) []Effect {
	if err := e.nav.SetFilter(raw); err != nil {
		return e.fail(err)
	}
	if raw != "" {
		e.notice = info("%d shown", len(e.nav.Snapshot().Entries))
	}
	return nil
}

func cmdSort(e *Engine, args []string, _ string) []Effect {
	if len(args) == 0 || len(args) > 2 || len(args) == 2 && args[1] != "reverse" {
		return e.fail(fmt.Errorf("usage: sort <name|size|mtime|kind> [reverse]"))
	}
	crit, err := nav.ParseCriterion(args[0])
	if err != nil {
		return e.fail(err)
	}
	e.nav.Sort(nav.SortOrder{Criterion: crit, Reverse: len(args) == 2})
	return nil
}

func markCmd(kind action.Kind) command {
	return func(e *Engine, args []string, _ string) []Effect {
		name, err := oneArg(kind.String(), args)
		if err != nil {
			return e.fail(err)
		}
		return e.apply(action.New(kind).WithArg(name))
	}
}

// run keeps the template as typed so {} and quoting reach Expand intact
func cmdRun(e *Engine, _ []string, raw string) []Effect {
	if raw == "" {
		return e.fail(fmt.Errorf("run needs a command"))
	}
	return e.plan(action.New(action.RunExternal).WithArg(raw))
}
