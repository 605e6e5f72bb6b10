package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	bkey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"filephile/internal/dispatch"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width     int
	Height    int
	Offset    int // first listing row on screen
	Engine    dispatch.View
	TextInput string // rendered text field, empty when closed
	HelpModel help.Model
	HelpKeys  []bkey.Binding
}

// Chrome is the number of rows around the listing: title, status and
// footer lines
const Chrome = 3

// ListHeight returns how many listing rows fit in height
func ListHeight(height int) int {
	if n := height - Chrome; n > 1 {
		return n
	}
	return 1
}

// ScrollOffset moves offset the least needed to keep scrollOff rows of
// context around the cursor
func ScrollOffset(offset, cursor, total, height, scrollOff int) int {
	if height <= 0 || total <= height {
		return 0
	}
	if limit := (height - 1) / 2; scrollOff > limit {
		scrollOff = limit
	}
	if cursor-scrollOff < offset {
		offset = cursor - scrollOff
	}
	if cursor+scrollOff >= offset+height {
		offset = cursor + scrollOff - height + 1
	}
	if offset > total-height {
		offset = total - height
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// Renderer handles all view rendering
type Renderer struct {
	styles      *Styles
	entryRender *EntryRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:      styles,
		entryRender: NewEntryRenderer(styles),
	}
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	width := state.Width
	if width <= 0 {
		width = 80
	}
	var content strings.Builder

	content.WriteString(r.renderTitle(state, width))
	content.WriteString("\n")
	content.WriteString(r.renderListing(state, width))
	content.WriteString("\n")
	content.WriteString(r.renderStatus(state, width))
	content.WriteString("\n")
	content.WriteString(r.renderFooter(state))

	return r.styles.Main.MaxHeight(state.Height).Render(content.String())
}

func (r *Renderer) renderTitle(state ViewState, width int) string {
	v := state.Engine
	logo := r.styles.Title.Render(runewidth.Truncate(v.Nav.Dir, width/2, "…"))

	var right []string
	if v.Nav.Filter != "" {
		right = append(right, r.styles.Filter.Render(fmt.Sprintf("[filter: %s]", v.Nav.Filter)))
	}
	sortName := v.Nav.Sort.Criterion.String()
	if v.Nav.Sort.Reverse {
		sortName += " desc"
	}
	right = append(right, r.styles.Dim.Render("sort:"+sortName))
	if v.Nav.ShowHidden {
		right = append(right, r.styles.Dim.Render("hidden"))
	}
	if sel := len(v.Nav.Selected); sel > 0 {
		right = append(right, r.styles.Selected.Render(fmt.Sprintf("%d selected", sel)))
	}
	if v.Register > 0 {
		verb := "copied"
		if v.RegisterCut {
			verb = "cut"
		}
		right = append(right, r.styles.Dim.Render(fmt.Sprintf("%d %s", v.Register, verb)))
	}
	rightContent := strings.Join(right, "  ")

	padding := width - 2 - lipgloss.Width(logo) - lipgloss.Width(rightContent)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + rightContent
}

func (r *Renderer) renderListing(state ViewState, width int) string {
	v := state.Engine
	height := ListHeight(state.Height)
	entries := v.Nav.Entries

	if len(entries) == 0 {
		msg := "empty directory"
		if v.Nav.Filter != "" {
			msg = "nothing matches the filter"
		}
		lines := []string{r.styles.Dim.Render(msg)}
		for len(lines) < height {
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n")
	}

	end := state.Offset + height
	if end > len(entries) {
		end = len(entries)
	}
	lines := make([]string, 0, height)
	for i := state.Offset; i < end; i++ {
		e := entries[i]
		lines = append(lines, r.entryRender.RenderEntry(e, i == v.Nav.Cursor, v.Nav.Selected[e.Path], v.Nav.Query, width-2))
	}
	if state.Offset > 0 && len(lines) > 0 {
		lines[0] = r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", state.Offset))
	}
	if below := len(entries) - end; below > 0 && len(lines) > 1 {
		lines[len(lines)-1] = r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", below+1))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderStatus(state ViewState, width int) string {
	v := state.Engine
	if state.TextInput != "" {
		return state.TextInput
	}

	parts := []string{r.styles.Mode.Render(strings.ToUpper(v.Mode.String()))}
	if v.Count > 0 || v.PendingKeys != "" {
		pending := v.PendingKeys
		if v.Count > 0 {
			pending = fmt.Sprintf("%d%s", v.Count, pending)
		}
		parts = append(parts, r.styles.Pending.Render(pending))
	}
	if v.AwaitingArg != "" {
		parts = append(parts, r.styles.Pending.Render(v.AwaitingArg+"…"))
	}
	for _, op := range v.Operations {
		parts = append(parts, r.styles.Progress.Render(fmt.Sprintf("%s %d/%d", op.Kind, op.Done, op.Total)))
	}

	switch {
	case v.Prompt != "":
		parts = append(parts, r.styles.Confirm.Render(v.Prompt))
	case v.Notice.Text != "":
		style := r.styles.StatusInfo
		switch v.Notice.Level {
		case dispatch.LevelWarn:
			style = r.styles.StatusWarn
		case dispatch.LevelError:
			style = r.styles.StatusError
		}
		parts = append(parts, style.Render(v.Notice.Text))
	}
	line := strings.Join(parts, " ")
	if lipgloss.Width(line) > width-2 {
		// styled text can't be cut safely, so fall back to plain
		plain := strings.Join([]string{v.Mode.String(), v.Prompt + v.Notice.Text}, " ")
		line = runewidth.Truncate(plain, width-2, "…")
	}
	return line
}

func (r *Renderer) renderFooter(state ViewState) string {
	if len(state.HelpKeys) == 0 {
		return r.styles.Help.Render("Press ? for help")
	}
	return state.HelpModel.ShortHelpView(state.HelpKeys)
}
