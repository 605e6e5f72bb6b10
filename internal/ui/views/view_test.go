package views

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"filephile/internal/dispatch"
	"filephile/internal/domain"
	"filephile/internal/nav"
)

func TestScrollOffset(t *testing.T) {
	tests := []struct {
		name                                        string
		offset, cursor, total, height, scrollOff, want int
	}{
		{"fits", 0, 5, 8, 10, 3, 0},
		{"top", 0, 0, 100, 10, 3, 0},
		{"keeps context below", 0, 7, 100, 10, 3, 1},
		{"keeps context above", 50, 52, 100, 10, 3, 49},
		{"no move inside margins", 10, 15, 100, 10, 3, 10},
		{"bottom clamps", 0, 99, 100, 10, 3, 90},
		{"huge scroll off centers", 0, 50, 100, 10, 99, 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrollOffset(tt.offset, tt.cursor, tt.total, tt.height, tt.scrollOff))
		})
	}
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", formatSize(domain.Entry{Size: 512}))
	assert.Equal(t, "1.5K", formatSize(domain.Entry{Size: 1536}))
	assert.Equal(t, "2.0M", formatSize(domain.Entry{Size: 2 << 20}))
	assert.Equal(t, "-", formatSize(domain.Entry{Kind: domain.KindDir, Size: 4096}))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "Mar  5 09:07", formatTime(time.Date(2024, 3, 5, 9, 7, 0, 0, time.UTC)))
	assert.Len(t, formatTime(time.Time{}), len(timeLayout))
}

func TestRenderEntryTruncatesWideNames(t *testing.T) {
	r := NewEntryRenderer(NewStyles())
	e := domain.Entry{Name: strings.Repeat("界", 40), Kind: domain.KindFile, Size: 10}
	line := r.RenderEntry(e, false, false, "", 30)
	assert.Contains(t, line, "…")
	assert.Contains(t, line, "10B")
}

func TestRenderShowsListingAndNotice(t *testing.T) {
	entries := []domain.Entry{
		{Name: "a.txt", Path: "/d/a.txt"},
		{Name: "dir1", Path: "/d/dir1", Kind: domain.KindDir},
	}
	out := NewRenderer().Render(ViewState{
		Width:  80,
		Height: 10,
		Engine: dispatch.View{
			Nav:    nav.Snapshot{Dir: "/d", Entries: entries, Cursor: 1, Selected: map[string]bool{"/d/a.txt": true}},
			Notice: dispatch.Notice{Level: dispatch.LevelError, Text: "permission denied"},
		},
	})
	assert.Contains(t, out, "/d")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "dir1/")
	assert.Contains(t, out, "1 selected")
	assert.Contains(t, out, "permission denied")
	assert.Contains(t, out, "NORMAL")
}

func TestRenderPromptWinsOverNotice(t *testing.T) {
	out := NewRenderer().Render(ViewState{
		Width:  80,
		Height: 10,
		Engine: dispatch.View{
			Nav:    nav.Snapshot{Dir: "/d", Selected: map[string]bool{}},
			Prompt: "delete 2 items? (y/n)",
			Notice: dispatch.Notice{Text: "2 copied"},
		},
	})
	assert.Contains(t, out, "delete 2 items? (y/n)")
	assert.NotContains(t, out, "2 copied")
	assert.Contains(t, out, "empty directory")
}
