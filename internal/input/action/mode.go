package action

import "fmt"

// Mode scopes which bindings are active. Exactly one mode is active at a time.
type Mode int

const (
	ModeNormal Mode = iota
	ModeVisual
	ModeRename
	ModeCommand
	ModeSearch
	ModeConfirm
	ModePrompt
)

var modeNames = []string{
	ModeNormal:  "normal",
	ModeVisual:  "visual",
	ModeRename:  "rename",
	ModeCommand: "command",
	ModeSearch:  "search",
	ModeConfirm: "confirm",
	ModePrompt:  "prompt",
}

// Modes lists every mode
func Modes() []Mode {
	return []Mode{ModeNormal, ModeVisual, ModeRename, ModeCommand, ModeSearch, ModeConfirm, ModePrompt}
}

func (m Mode) String() string {
	if int(m) >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsText reports whether unbound printable keys are typed into a text field
func (m Mode) IsText() bool {
	return m == ModeRename || m == ModeCommand || m == ModeSearch
}

// ParseMode parses a mode name
func ParseMode(name string) (Mode, error) {
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	if s := Suggest(name, modeNames); s != "" {
		return ModeNormal, fmt.Errorf("unknown mode %q (did you mean %q?)", name, s)
	}
	return ModeNormal, fmt.Errorf("unknown mode %q", name)
}
