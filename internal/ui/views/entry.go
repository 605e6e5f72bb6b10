package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"filephile/internal/domain"
)

// EntryRenderer renders one line of the listing
type EntryRenderer struct {
	styles *Styles
}

// NewEntryRenderer creates a new entry renderer
func NewEntryRenderer(styles *Styles) *EntryRenderer {
	return &EntryRenderer{styles: styles}
}

// RenderEntry renders e in width columns. The name is truncated to leave
// room for the size and modification time columns.
func (r *EntryRenderer) RenderEntry(e domain.Entry, isCursor, isSelected bool, query string, width int) string {
	marker := "  "
	if isSelected {
		marker = r.styles.Selected.Render("* ")
	}

	name := e.Name
	switch {
	case e.Kind == domain.KindSymlink:
		name += " -> " + e.Target
	case e.IsDir():
		name += "/"
	}

	meta := fmt.Sprintf("%6s %s", formatSize(e), formatTime(e.ModTime))
	nameWidth := width - 2 - len(meta) - 1
	if nameWidth < 4 {
		nameWidth = 4
	}
	name = runewidth.Truncate(name, nameWidth, "…")
	pad := nameWidth - runewidth.StringWidth(name)
	if pad < 0 {
		pad = 0
	}

	style := r.styles.EntryStyle(e)
	if isCursor {
		style = style.Inherit(r.styles.Cursor)
	}
	rendered := r.highlight(name, query, style)
	line := marker + rendered + style.Render(strings.Repeat(" ", pad)+" ") + r.styles.Dim.Render(meta)
	if isCursor {
		return r.styles.Cursor.Render(line)
	}
	return line
}

// highlight marks the first case-insensitive occurrence of query in name
func (r *EntryRenderer) highlight(name, query string, style lipgloss.Style) string {
	if query == "" {
		return style.Render(name)
	}
	i := strings.Index(strings.ToLower(name), strings.ToLower(query))
	if i < 0 || i+len(query) > len(name) {
		return style.Render(name)
	}
	j := i + len(query)
	return style.Render(name[:i]) + r.styles.Highlight.Inherit(style).Render(name[i:j]) + style.Render(name[j:])
}

const timeLayout = "Jan _2 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return strings.Repeat(" ", len(timeLayout))
	}
	return t.Format(timeLayout)
}

func formatSize(e domain.Entry) string {
	if e.IsDir() {
		return "-"
	}
	const unit = 1024
	if e.Size < unit {
		return fmt.Sprintf("%dB", e.Size)
	}
	div, exp := int64(unit), 0
	for n := e.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(e.Size)/float64(div), "KMGTPE"[exp])
}
