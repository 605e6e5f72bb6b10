//go:build e2e && unix

package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListingAndCursorMovement(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.File("alpha.txt", "a")
	b.File("beta.txt", "b")
	b.Dir("gamma")

	require.NoError(t, b.Start())
	require.True(t, b.Ready(), "should draw the first frame\n%s", b.Tail(2048))
	require.True(t, b.SeePlain("alpha.txt"))
	require.True(t, b.SeePlain("gamma/"))

	// directories sort first; move away with a count and come back
	b.Send("2")
	b.Send(KeyDown)
	b.Mark()
	b.Type("gg")
	b.Send(KeyEnter)
	require.True(t, b.SeeNew("empty directory"), "should have entered gamma\n%s", b.Tail(2048))

	b.Mark()
	b.Send(KeyParent)
	require.True(t, b.SeeNew("beta.txt"), "should be back in the workspace")
}

func TestUnboundKeyShowsNotice(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.File("a.txt", "a")

	require.NoError(t, b.Start())
	require.True(t, b.Ready())

	b.Send("Z")
	require.True(t, b.SeePlain("unknown key sequence: Z"), "unbound keys are reported\n%s", b.Tail(2048))
}

func TestSearchMovesToMatch(t *testing.T) {
	t.Parallel()
	b := NewBrowser(t)
	b.File("apple.txt", "")
	b.File("banana.txt", "")
	b.File("cherry.txt", "red fruit")

	require.NoError(t, b.Start())
	require.True(t, b.Ready())

	b.Send("/")
	b.Type("chry")
	b.Send(KeyEnter)
	b.Mark()
	b.Send("i")
	require.True(t, b.SeeNew("red fruit"), "preview should open the matched file\n%s", b.Tail(2048))
}
