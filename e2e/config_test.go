//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomBindingFromConfig(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.File("a.txt", "a")
	b.File("b.txt", "b")
	cfg := b.Config(`
[[bindings]]
mode = "normal"
keys = "x"
action = "quit"

[[bindings]]
mode = "normal"
keys = "q"
action = "unbind"
`)

	require.NoError(t, b.Start("--config", cfg))
	require.True(t, b.Ready())

	b.Send("q")
	require.True(t, b.SeePlain("unknown key sequence: q"), "q was unbound\n%s", b.Tail(2048))

	b.Send("x")
	exited, err := b.WaitExit(3 * time.Second)
	require.True(t, exited, "x is bound to quit")
	assert.NoError(t, err)
}

func TestInvalidConfigIsFatal(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	cfg := b.Config(`
[[bindings]]
mode = "normal"
keys = "x"
action = "qiut"
`)

	require.NoError(t, b.Start("--config", cfg))
	exited, err := b.WaitExit(3 * time.Second)
	require.True(t, exited)
	assert.Error(t, err)
	assert.True(t, b.SeePlain(`did you mean "quit"`), "%s", b.Tail(2048))
}
