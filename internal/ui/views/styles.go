package views

import (
	"github.com/charmbracelet/lipgloss"

	"filephile/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	Confirm     lipgloss.Style
	Dim         lipgloss.Style
	Filter      lipgloss.Style
	Help        lipgloss.Style
	Main        lipgloss.Style
	Scroll      lipgloss.Style
	Highlight   lipgloss.Style
	Mode        lipgloss.Style
	Pending     lipgloss.Style
	StatusError lipgloss.Style
	StatusWarn  lipgloss.Style
	StatusInfo  lipgloss.Style
	Progress    lipgloss.Style
	Cursor      lipgloss.Style
	Selected    lipgloss.Style
	Dir         lipgloss.Style
	Symlink     lipgloss.Style
	File        lipgloss.Style
	Hidden      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Confirm:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:        lipgloss.NewStyle().Faint(true),
		Main:        lipgloss.NewStyle().Padding(0, 1),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Mode:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39")).Padding(0, 1),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		Progress:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		Cursor:      lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Selected:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Dir:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		Symlink:     lipgloss.NewStyle().Foreground(lipgloss.Color("51")),
		File:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Hidden:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// EntryStyle returns the name style for an entry kind
func (s *Styles) EntryStyle(e domain.Entry) lipgloss.Style {
	switch {
	case e.Kind == domain.KindSymlink:
		return s.Symlink
	case e.IsDir():
		return s.Dir
	case e.IsHidden():
		return s.Hidden
	}
	return s.File
}
