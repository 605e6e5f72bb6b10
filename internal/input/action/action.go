// Package action defines the closed vocabulary of operations that key
// bindings resolve to and the modes that scope them.
package action

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind is one member of the action vocabulary
type Kind int

const (
	None Kind = iota

	// Cursor movement
	MoveDown
	MoveUp
	MoveTop
	MoveBottom
	PageDown
	PageUp

	// Directory navigation
	Enter
	Parent
	Back
	Refresh

	// Selection
	ToggleSelect
	SelectRange
	SelectAll
	ClearSelection
	SelectGlob

	// Marks
	SetMark
	JumpToMark

	// Ordering and display
	Sort
	ReverseSort
	Search
	SearchNext
	Filter
	ToggleHidden

	// Filesystem operations
	Copy
	Cut
	Paste
	CopyTo
	MoveTo
	Delete
	Rename
	CreateFile
	CreateDir
	RunExternal
	Open
	Undo
	CancelOperation

	// Mode and prompt handling
	ChangeMode
	Command
	Submit
	Confirm
	Cancel

	// Misc
	YankPath
	Preview
	Help
	Quit
	ForceQuit
)

var kindNames = map[Kind]string{
	MoveDown:        "move_down",
	MoveUp:          "move_up",
	MoveTop:         "move_top",
	MoveBottom:      "move_bottom",
	PageDown:        "page_down",
	PageUp:          "page_up",
	Enter:           "enter",
	Parent:          "parent",
	Back:            "back",
	Refresh:         "refresh",
	ToggleSelect:    "toggle_select",
	SelectRange:     "select_range",
	SelectAll:       "select_all",
	ClearSelection:  "clear_selection",
	SelectGlob:      "select_glob",
	SetMark:         "set_mark",
	JumpToMark:      "jump_to_mark",
	Sort:            "sort",
	ReverseSort:     "reverse_sort",
	Search:          "search",
	SearchNext:      "search_next",
	Filter:          "filter",
	ToggleHidden:    "toggle_hidden",
	Copy:            "copy",
	Cut:             "cut",
	Paste:           "paste",
	CopyTo:          "copy_to",
	MoveTo:          "move_to",
	Delete:          "delete",
	Rename:          "rename",
	CreateFile:      "create_file",
	CreateDir:       "create_dir",
	RunExternal:     "run_external",
	Open:            "open",
	Undo:            "undo",
	CancelOperation: "cancel_operation",
	ChangeMode:      "change_mode",
	Command:         "command",
	Submit:          "submit",
	Confirm:         "confirm",
	Cancel:          "cancel",
	YankPath:        "yank_path",
	Preview:         "preview",
	Help:            "help",
	Quit:            "quit",
	ForceQuit:       "force_quit",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the configuration name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// Names returns every action name, sorted
func Names() []string {
	names := make([]string, 0, len(kindsByName))
	for name := range kindsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the kind with the given configuration name
func Lookup(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Action is a resolved operation. Count is the repeat multiplier typed before
// the binding (0 when none was typed). Arg carries the single payload an action
// may need: a mark name, mode name, sort criterion, template name or text.
type Action struct {
	Kind  Kind
	Count int
	Arg   string
}

// Type returns the action's configuration name
func (a Action) Type() string { return a.Kind.String() }

// Times returns the repeat count, treating an absent count as 1
func (a Action) Times() int {
	if a.Count <= 0 {
		return 1
	}
	return a.Count
}

// WithCount returns a copy of a carrying count
func (a Action) WithCount(count int) Action {
	a.Count = count
	return a
}

// WithArg returns a copy of a carrying arg
func (a Action) WithArg(arg string) Action {
	a.Arg = arg
	return a
}

func (a Action) String() string {
	var b strings.Builder
	if a.Count > 0 {
		b.WriteString(strconv.Itoa(a.Count))
		b.WriteByte('*')
	}
	b.WriteString(a.Kind.String())
	if a.Arg != "" {
		b.WriteByte(' ')
		b.WriteString(a.Arg)
	}
	return b.String()
}

// New creates an action of the given kind
func New(kind Kind) Action {
	return Action{Kind: kind}
}

// Parse parses "name" or "name argument" as written in configuration
func Parse(spec string) (Action, error) {
	spec = strings.TrimSpace(spec)
	name, arg, _ := strings.Cut(spec, " ")
	kind, ok := Lookup(name)
	if !ok {
		if s := Suggest(name, Names()); s != "" {
			return Action{}, fmt.Errorf("unknown action %q (did you mean %q?)", name, s)
		}
		return Action{}, fmt.Errorf("unknown action %q", name)
	}
	a := Action{Kind: kind, Arg: strings.TrimSpace(arg)}
	if err := a.validateArg(); err != nil {
		return Action{}, err
	}
	return a, nil
}

func (a Action) validateArg() error {
	switch a.Kind {
	case ChangeMode:
		if _, err := ParseMode(a.Arg); err != nil {
			return err
		}
	case Sort:
		if a.Arg == "" {
			return fmt.Errorf("sort needs a criterion")
		}
	case RunExternal, SelectGlob, Filter, CopyTo, MoveTo:
		if a.Arg == "" {
			return fmt.Errorf("%s needs an argument", a.Kind)
		}
	}
	return nil
}

// Suggest returns the candidate closest to name by edit distance, or "" if
// nothing is close enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}
