// Package key models single keypresses and the sequences bindings are made of.
package key

import (
	"strings"
)

// Code identifies a non-printable key. Printable keys use CodeRune.
type Code int

const (
	CodeRune Code = iota
	CodeEnter
	CodeEscape
	CodeTab
	CodeBackspace
	CodeDelete
	CodeUp
	CodeDown
	CodeLeft
	CodeRight
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeF1
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
)

// canonical names, used by Event.String
var codeNames = map[Code]string{
	CodeEnter:     "Enter",
	CodeEscape:    "Esc",
	CodeTab:       "Tab",
	CodeBackspace: "BS",
	CodeDelete:    "Del",
	CodeUp:        "Up",
	CodeDown:      "Down",
	CodeLeft:      "Left",
	CodeRight:     "Right",
	CodeHome:      "Home",
	CodeEnd:       "End",
	CodePageUp:    "PageUp",
	CodePageDown:  "PageDown",
	CodeF1:        "F1",
	CodeF2:        "F2",
	CodeF3:        "F3",
	CodeF4:        "F4",
	CodeF5:        "F5",
	CodeF6:        "F6",
	CodeF7:        "F7",
	CodeF8:        "F8",
	CodeF9:        "F9",
	CodeF10:       "F10",
	CodeF11:       "F11",
	CodeF12:       "F12",
}

// accepted spellings, lower case
var codeAliases = map[string]Code{
	"enter": CodeEnter, "cr": CodeEnter, "return": CodeEnter,
	"esc": CodeEscape, "escape": CodeEscape,
	"tab":       CodeTab,
	"bs":        CodeBackspace, "backspace": CodeBackspace,
	"del": CodeDelete, "delete": CodeDelete,
	"up": CodeUp, "down": CodeDown, "left": CodeLeft, "right": CodeRight,
	"home": CodeHome, "end": CodeEnd,
	"pageup": CodePageUp, "pgup": CodePageUp,
	"pagedown": CodePageDown, "pgdown": CodePageDown, "pgdn": CodePageDown,
	"f1": CodeF1, "f2": CodeF2, "f3": CodeF3, "f4": CodeF4, "f5": CodeF5, "f6": CodeF6,
	"f7": CodeF7, "f8": CodeF8, "f9": CodeF9, "f10": CodeF10, "f11": CodeF11, "f12": CodeF12,
}

// Modifier is a bit set of held modifier keys
type Modifier uint8

const (
	ModNone  Modifier = 0
	ModCtrl  Modifier = 1 << 0
	ModAlt   Modifier = 1 << 1
	ModShift Modifier = 1 << 2
)

// Has reports whether m includes mod
func (m Modifier) Has(mod Modifier) bool { return m&mod != 0 }

// Event is a single logical keypress. Shift is implied by the rune for
// printable keys and only recorded for special keys (<S-Tab>).
type Event struct {
	Code Code
	Rune rune
	Mods Modifier
}

// Rune creates an event for a printable key
func Rune(r rune) Event {
	return Event{Code: CodeRune, Rune: r}
}

// Special creates an event for a named key
func Special(code Code, mods Modifier) Event {
	return Event{Code: code, Mods: mods}
}

// Ctrl creates a control-modified printable key
func Ctrl(r rune) Event {
	return Event{Code: CodeRune, Rune: r, Mods: ModCtrl}
}

// IsDigit reports whether the event is an unmodified digit
func (e Event) IsDigit() bool {
	return e.Code == CodeRune && e.Mods == ModNone && e.Rune >= '0' && e.Rune <= '9'
}

// IsEscape reports whether the event is a bare Escape
func (e Event) IsEscape() bool {
	return e.Code == CodeEscape && e.Mods == ModNone
}

// IsPrintable reports whether the event inserts a character in text modes
func (e Event) IsPrintable() bool {
	return e.Code == CodeRune && e.Mods&(ModCtrl|ModAlt) == 0
}

// String returns the canonical spelling used as a trie key and in messages.
// Examples: "j", "G", "<Space>", "<C-d>", "<S-Tab>", "<Enter>"
func (e Event) String() string {
	var name string
	bracket := e.Mods != ModNone
	if e.Code == CodeRune {
		switch e.Rune {
		case ' ':
			name, bracket = "Space", true
		case '<':
			name, bracket = "lt", true
		default:
			name = string(e.Rune)
		}
	} else {
		name, bracket = codeNames[e.Code], true
	}
	if !bracket {
		return name
	}

	var b strings.Builder
	b.WriteByte('<')
	if e.Mods.Has(ModCtrl) {
		b.WriteString("C-")
	}
	if e.Mods.Has(ModAlt) {
		b.WriteString("A-")
	}
	if e.Mods.Has(ModShift) {
		b.WriteString("S-")
	}
	b.WriteString(name)
	b.WriteByte('>')
	return b.String()
}

// Sequence is an ordered list of key events
type Sequence []Event

// String concatenates the canonical spelling of each event
func (s Sequence) String() string {
	var b strings.Builder
	for _, e := range s {
		b.WriteString(e.String())
	}
	return b.String()
}

// Equal reports whether both sequences contain the same events
func (s Sequence) Equal(other Sequence) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a prefix of s
func (s Sequence) HasPrefix(prefix Sequence) bool {
	if len(prefix) > len(s) {
		return false
	}
	return Sequence(s[:len(prefix)]).Equal(prefix)
}

// Append returns a new sequence with e added
func (s Sequence) Append(e Event) Sequence {
	out := make(Sequence, len(s), len(s)+1)
	copy(out, s)
	return append(out, e)
}
