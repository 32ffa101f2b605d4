package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/freenote/freenote/internal/cli/formatter"
	"github.com/freenote/freenote/internal/render"
)

// freenoteHuhTheme returns a custom huh theme using the Gruvbox palette.
func freenoteHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// deleteConfirm asks before a note object is deleted. Deleting a notebook
// takes everything inside it.
type deleteConfirm struct {
	*wizardView
	confirmed bool
}

func newDeleteConfirm(state *SharedState, row render.Row, del tea.Cmd) *deleteConfirm {
	c := &deleteConfirm{}

	title := fmt.Sprintf("Delete %q?", row.Title)
	desc := "This note will be removed."
	if row.IsNotebook() {
		desc = fmt.Sprintf("This notebook and %s inside it will be removed.", things(row.ChildCount))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(desc).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&c.confirmed),
		),
	).WithTheme(freenoteHuhTheme()).WithShowHelp(false)

	c.wizardView = newWizardView(state, "Delete", form, func() tea.Cmd {
		if !c.confirmed {
			return nil
		}
		return del
	})
	return c
}

// Update keeps the confirm itself on the view stack rather than the
// embedded wizard.
func (c *deleteConfirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := c.wizardView.Update(msg)
	return c, cmd
}

func things(n int) string {
	switch n {
	case 0:
		return "nothing"
	case 1:
		return "the 1 item"
	default:
		return fmt.Sprintf("the %d items", n)
	}
}
