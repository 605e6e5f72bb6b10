//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuitExitsCleanly(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.File("a.txt", "a")

	require.NoError(t, b.Start())
	require.True(t, b.Ready())

	b.Send(KeyQuit)
	exited, err := b.WaitExit(3 * time.Second)
	require.True(t, exited, "q should end the session\n%s", b.Tail(2048))
	assert.NoError(t, err)
}

func TestMissingDirectoryFails(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.workspace = b.workspace + "/does-not-exist"

	require.NoError(t, b.Start())
	exited, err := b.WaitExit(3 * time.Second)
	require.True(t, exited)
	assert.Error(t, err)
	assert.True(t, b.SeePlain("Error:"))
}
