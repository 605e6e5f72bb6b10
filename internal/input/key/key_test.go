package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Event
	}{
		{"j", Rune('j')},
		{"G", Rune('G')},
		{"/", Rune('/')},
		{"enter", Special(CodeEnter, ModNone)},
		{"<CR>", Special(CodeEnter, ModNone)},
		{"<Esc>", Special(CodeEscape, ModNone)},
		{"space", Rune(' ')},
		{"<Space>", Rune(' ')},
		{"ctrl+d", Ctrl('d')},
		{"Ctrl+D", Ctrl('d')},
		{"<C-d>", Ctrl('d')},
		{"<A-x>", Event{Code: CodeRune, Rune: 'x', Mods: ModAlt}},
		{"shift+tab", Special(CodeTab, ModShift)},
		{"<S-Tab>", Special(CodeTab, ModShift)},
		{"<S-a>", Rune('A')},
		{"<lt>", Rune('<')},
		{"<", Rune('<')},
		{"+", Rune('+')},
		{"<C-->", Event{Code: CodeRune, Rune: '-', Mods: ModCtrl}},
		{"pgdown", Special(CodePageDown, ModNone)},
		{"F5", Special(CodeF5, ModNone)},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, ErrEmptySpec)

	_, err = Parse("<X-a>")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = Parse("hyper+a")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = Parse("abc")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = ParseSequence("<C-w")
	assert.ErrorIs(t, err, ErrUnmatchedBracket)
}

func TestParseSequence(t *testing.T) {
	tests := []struct {
		spec string
		want Sequence
	}{
		{"gg", Sequence{Rune('g'), Rune('g')}},
		{"dd", Sequence{Rune('d'), Rune('d')}},
		{"<C-w>j", Sequence{Ctrl('w'), Rune('j')}},
		{"ctrl+w j", Sequence{Ctrl('w'), Rune('j')}},
		{"<Space>a", Sequence{Rune(' '), Rune('a')}},
		{"enter", Sequence{Special(CodeEnter, ModNone)}},
		{"ctrl+d", Sequence{Ctrl('d')}},
		{"é", Sequence{Rune('é')}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseSequence(tt.spec)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "j", Rune('j').String())
	assert.Equal(t, "<Space>", Rune(' ').String())
	assert.Equal(t, "<C-d>", Ctrl('d').String())
	assert.Equal(t, "<S-Tab>", Special(CodeTab, ModShift).String())
	assert.Equal(t, "<Esc>", Special(CodeEscape, ModNone).String())
	assert.Equal(t, "<lt>", Rune('<').String())
	assert.Equal(t, "gg", MustParseSequence("gg").String())
	assert.Equal(t, "<C-w>j", MustParseSequence("ctrl+w j").String())
}

func TestRoundTripCanonical(t *testing.T) {
	for _, spec := range []string{"j", "<C-d>", "<Enter>", "<S-Tab>", "<Space>", "<A-x>", "<F12>"} {
		ev, err := Parse(spec)
		require.NoError(t, err)
		assert.Equal(t, spec, ev.String())
	}
}

func TestEventPredicates(t *testing.T) {
	assert.True(t, Rune('7').IsDigit())
	assert.False(t, Ctrl('7').IsDigit())
	assert.False(t, Rune('a').IsDigit())
	assert.True(t, Special(CodeEscape, ModNone).IsEscape())
	assert.True(t, Rune('x').IsPrintable())
	assert.False(t, Ctrl('x').IsPrintable())
}

func TestSequenceHelpers(t *testing.T) {
	seq := MustParseSequence("gg")
	assert.True(t, seq.HasPrefix(Sequence{Rune('g')}))
	assert.False(t, seq.HasPrefix(MustParseSequence("ggg")))

	longer := seq.Append(Rune('x'))
	assert.Len(t, seq, 2)
	assert.Equal(t, "ggx", longer.String())
}
