package ui

import (
	"fmt"
	"sort"
	"strings"

	"filephile/internal/input/action"
	"filephile/internal/input/binding"

	bkey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// pagerDoneMsg reports that the pager was closed
type pagerDoneMsg struct {
	err error
}

// HelpRenderer renders the key bindings of the binding table
type HelpRenderer struct {
	table *binding.Table
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer(table *binding.Table) *HelpRenderer {
	return &HelpRenderer{table: table}
}

func describe(b binding.Binding) string {
	if b.Description != "" {
		return b.Description
	}
	return b.Action.String()
}

// RenderHelpContent lists every binding, the active mode first, for the
// pager
func (r *HelpRenderer) RenderHelpContent(active action.Mode) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("filephile key bindings"))
	help.WriteString("\n")

	modes := []action.Mode{active}
	for _, m := range action.Modes() {
		if m != active {
			modes = append(modes, m)
		}
	}

	var global []binding.Binding
	for _, m := range modes {
		var own []binding.Binding
		for _, b := range r.table.Bindings(m) {
			if b.Global {
				if m == active {
					global = append(global, b)
				}
				continue
			}
			own = append(own, b)
		}
		if len(own) == 0 {
			continue
		}
		help.WriteString(sectionStyle.Render(m.String() + " mode"))
		help.WriteString("\n")
		writeBindings(&help, own, keyStyle, descStyle)
	}
	if len(global) > 0 {
		help.WriteString(sectionStyle.Render("every mode"))
		help.WriteString("\n")
		writeBindings(&help, global, keyStyle, descStyle)
	}

	help.WriteString("\n")
	help.WriteString(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241")).
		Render("  A count typed before a key repeats it: 3j, 10G"))
	help.WriteString("\n")
	return help.String()
}

func writeBindings(w *strings.Builder, bindings []binding.Binding, keyStyle, descStyle lipgloss.Style) {
	sort.SliceStable(bindings, func(i, j int) bool {
		return bindings[i].Action.Kind < bindings[j].Action.Kind
	})
	width := 0
	for _, b := range bindings {
		if n := len(b.Keys.String()); n > width {
			width = n
		}
	}
	for _, b := range bindings {
		keys := b.Keys.String()
		pad := strings.Repeat(" ", width-len(keys)+2)
		fmt.Fprintf(w, "  %s%s%s\n", keyStyle.Render(keys), pad, descStyle.Render(describe(b)))
	}
}

// ShortHelp returns the footer hints for a mode: the first binding of each
// of a few well known actions
func (r *HelpRenderer) ShortHelp(mode action.Mode) []bkey.Binding {
	wanted := []action.Kind{action.Help, action.Command, action.Search, action.Submit, action.Confirm, action.Cancel, action.Quit}
	var out []bkey.Binding
	for _, kind := range wanted {
		for _, b := range r.table.Bindings(mode) {
			if b.Action.Kind != kind {
				continue
			}
			keys := b.Keys.String()
			out = append(out, bkey.NewBinding(bkey.WithKeys(keys), bkey.WithHelp(keys, shortName(b))))
			break
		}
	}
	return out
}

func shortName(b binding.Binding) string {
	if b.Action.Arg != "" {
		return b.Action.Arg
	}
	return strings.ReplaceAll(b.Action.Kind.String(), "_", " ")
}
