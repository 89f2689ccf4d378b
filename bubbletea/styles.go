package bubbletea

import (
	"github.com/charmbracelet/lipgloss"

	"voxd"
)

// Styles holds the lipgloss styles for console rendering.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Task      lipgloss.Style
	Notes     lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Status    lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() Styles {
	return Styles{
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		Task:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Notes:     lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Faint(true),
		Status:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
	}
}

func (s Styles) forResponse(rt voxd.ResponseType) lipgloss.Style {
	switch rt {
	case voxd.ResponseTask:
		return s.Task
	case voxd.ResponseNotes:
		return s.Notes
	case voxd.ResponseError:
		return s.Error
	default:
		return s.Assistant
	}
}
