package ui

import (
	"filephile/internal/input/key"

	tea "github.com/charmbracelet/bubbletea"
)

var specialKeys = map[tea.KeyType]key.Code{
	tea.KeyEnter:     key.CodeEnter,
	tea.KeyEsc:       key.CodeEscape,
	tea.KeyTab:       key.CodeTab,
	tea.KeyBackspace: key.CodeBackspace,
	tea.KeyDelete:    key.CodeDelete,
	tea.KeyUp:        key.CodeUp,
	tea.KeyDown:      key.CodeDown,
	tea.KeyLeft:      key.CodeLeft,
	tea.KeyRight:     key.CodeRight,
	tea.KeyHome:      key.CodeHome,
	tea.KeyEnd:       key.CodeEnd,
	tea.KeyPgUp:      key.CodePageUp,
	tea.KeyPgDown:    key.CodePageDown,
	tea.KeyF1:        key.CodeF1,
	tea.KeyF2:        key.CodeF2,
	tea.KeyF3:        key.CodeF3,
	tea.KeyF4:        key.CodeF4,
	tea.KeyF5:        key.CodeF5,
	tea.KeyF6:        key.CodeF6,
	tea.KeyF7:        key.CodeF7,
	tea.KeyF8:        key.CodeF8,
	tea.KeyF9:        key.CodeF9,
	tea.KeyF10:       key.CodeF10,
	tea.KeyF11:       key.CodeF11,
	tea.KeyF12:       key.CodeF12,
}

// toEvent converts a terminal keypress into the engine's key event. Pastes
// and multi-rune messages are not keypresses and report false.
func toEvent(msg tea.KeyMsg) (key.Event, bool) {
	var mods key.Modifier
	if msg.Alt {
		mods |= key.ModAlt
	}
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Paste || len(msg.Runes) != 1 {
			return key.Event{}, false
		}
		return key.Event{Code: key.CodeRune, Rune: msg.Runes[0], Mods: mods}, true
	case tea.KeySpace:
		return key.Event{Code: key.CodeRune, Rune: ' ', Mods: mods}, true
	case tea.KeyShiftTab:
		return key.Special(key.CodeTab, mods|key.ModShift), true
	}
	if code, ok := specialKeys[msg.Type]; ok {
		return key.Special(code, mods), true
	}
	// tab and enter share codes with ctrl+i and ctrl+m and were handled above
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return key.Event{Code: key.CodeRune, Rune: 'a' + rune(msg.Type-tea.KeyCtrlA), Mods: mods | key.ModCtrl}, true
	}
	return key.Event{}, false
}
