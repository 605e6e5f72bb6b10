package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse errors
var (
	ErrEmptySpec        = errors.New("empty key specification")
	ErrInvalidSpec      = errors.New("invalid key specification")
	ErrUnmatchedBracket = errors.New("unmatched bracket in key specification")
)

// Parse parses a single key specification.
//
// Supported formats:
//   - Single character: "j", "G", "/"
//   - Key names: "enter", "esc", "space", "up", "f5"
//   - Modifier style: "ctrl+d", "alt+x", "shift+tab"
//   - Vim style: "<C-d>", "<A-x>", "<S-Tab>", "<CR>", "<Space>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") && len(spec) > 2 {
		return parseVimStyle(spec[1 : len(spec)-1])
	}

	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseModifierStyle(spec)
	}

	return parseKey(spec, ModNone)
}

// ParseSequence parses a multi-key specification such as "gg", "<C-w>j",
// "<Space>a" or the space separated "ctrl+w j".
func ParseSequence(spec string) (Sequence, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrEmptySpec
	}

	if strings.ContainsAny(spec, " \t") {
		var seq Sequence
		for _, field := range strings.Fields(spec) {
			ev, err := Parse(field)
			if err != nil {
				return nil, err
			}
			seq = append(seq, ev)
		}
		return seq, nil
	}

	// a whole spec like "enter" or "ctrl+d" is one key
	if _, ok := codeAliases[strings.ToLower(spec)]; ok || (len(spec) > 1 && strings.Contains(spec, "+") && spec[0] != '<') {
		ev, err := Parse(spec)
		if err != nil {
			return nil, err
		}
		return Sequence{ev}, nil
	}

	var seq Sequence
	for i := 0; i < len(spec); {
		if spec[i] == '<' {
			end := strings.IndexByte(spec[i:], '>')
			if end < 0 {
				return nil, fmt.Errorf("%w: %q", ErrUnmatchedBracket, spec)
			}
			ev, err := Parse(spec[i : i+end+1])
			if err != nil {
				return nil, err
			}
			seq = append(seq, ev)
			i += end + 1
			continue
		}
		r, size := utf8.DecodeRuneInString(spec[i:])
		seq = append(seq, Rune(r))
		i += size
	}
	return seq, nil
}

// MustParseSequence is ParseSequence for literals known to be valid
func MustParseSequence(spec string) Sequence {
	seq, err := ParseSequence(spec)
	if err != nil {
		panic(err)
	}
	return seq
}

func parseVimStyle(inner string) (Event, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return Event{}, ErrInvalidSpec
	}
	// "<->" style keys end in a hyphen; the last rune is always the key
	parts := strings.Split(inner, "-")
	keyPart := parts[len(parts)-1]
	modParts := parts[:len(parts)-1]
	if keyPart == "" && len(parts) > 1 {
		keyPart = "-"
		modParts = parts[:len(parts)-2]
	}

	var mods Modifier
	for _, p := range modParts {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "c":
			mods |= ModCtrl
		case "a", "m":
			mods |= ModAlt
		case "s":
			mods |= ModShift
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}
	return parseKey(keyPart, mods)
}

func parseModifierStyle(spec string) (Event, error) {
	parts := strings.Split(spec, "+")
	keyPart := parts[len(parts)-1]
	modParts := parts[:len(parts)-1]
	if keyPart == "" {
		// "ctrl++"
		keyPart = "+"
		modParts = parts[:len(parts)-2]
	}

	var mods Modifier
	for _, p := range modParts {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control", "c":
			mods |= ModCtrl
		case "alt", "meta", "option", "a", "m":
			mods |= ModAlt
		case "shift", "s":
			mods |= ModShift
		default:
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
	}
	return parseKey(strings.TrimSpace(keyPart), mods)
}

func parseKey(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	lower := strings.ToLower(keyPart)
	switch lower {
	case "space":
		return Event{Code: CodeRune, Rune: ' ', Mods: mods &^ ModShift}, nil
	case "lt":
		return Event{Code: CodeRune, Rune: '<', Mods: mods &^ ModShift}, nil
	case "gt":
		return Event{Code: CodeRune, Rune: '>', Mods: mods &^ ModShift}, nil
	case "bar":
		return Event{Code: CodeRune, Rune: '|', Mods: mods &^ ModShift}, nil
	}
	if code, ok := codeAliases[lower]; ok {
		return Special(code, mods), nil
	}

	if utf8.RuneCountInString(keyPart) != 1 {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, keyPart)
	}
	r, _ := utf8.DecodeRuneInString(keyPart)

	switch {
	case mods.Has(ModCtrl):
		// terminals cannot tell <C-a> from <C-A>
		r = unicode.ToLower(r)
	case mods.Has(ModShift):
		r = unicode.ToUpper(r)
	}
	// shift is carried by the rune itself
	return Event{Code: CodeRune, Rune: r, Mods: mods &^ ModShift}, nil
}
