package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/toppgo/toppgo/pkg/topp"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// CategoryListModel is the bubbletea model for interactive category
// selection: a checklist over the annotation vocabulary.
type CategoryListModel struct {
	Categories []topp.Category
	Checked    map[int]bool
	Cursor     int
	Confirmed  bool
}

// NewCategoryListModel creates a category checklist with the given
// categories pre-checked (none pre-checked means query everything).
func NewCategoryListModel(preselected []topp.Category) CategoryListModel {
	m := CategoryListModel{
		Categories: topp.Categories(),
		Checked:    make(map[int]bool),
	}
	on := make(map[topp.Category]bool, len(preselected))
	for _, c := range preselected {
		on[c] = true
	}
	for i, c := range m.Categories {
		if on[c] {
			m.Checked[i] = true
		}
	}
	return m
}

// Selected returns the checked categories in vocabulary order.
func (m CategoryListModel) Selected() []topp.Category {
	var out []topp.Category
	for i, c := range m.Categories {
		if m.Checked[i] {
			out = append(out, c)
		}
	}
	return out
}

func (m CategoryListModel) Init() tea.Cmd {
	return nil
}

func (m CategoryListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Categories)-1 {
				m.Cursor++
			}
		case " ":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			for i := range m.Categories {
				m.Checked[i] = true
			}
		case "n":
			m.Checked = make(map[int]bool)
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m CategoryListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Annotation Categories"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  n none  ⏎ confirm  q cancel"))
	b.WriteString("\n\n")

	for i, c := range m.Categories {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if m.Checked[i] {
			check = "[" + StyleSuccess.Render("x") + "]"
		}

		line := fmt.Sprintf("%s%s %s", cursor, check, c)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if m.Checked[i] {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected (none selected queries everything)",
		len(m.Selected()), len(m.Categories))))

	return b.String()
}

// pickCategories runs the interactive checklist and returns the selection.
// A cancelled session returns the preselected categories unchanged.
func pickCategories(preselected []topp.Category) ([]topp.Category, error) {
	model, err := tea.NewProgram(NewCategoryListModel(preselected)).Run()
	if err != nil {
		return nil, fmt.Errorf("category selection: %w", err)
	}
	final, ok := model.(CategoryListModel)
	if !ok || !final.Confirmed {
		return preselected, nil
	}
	return final.Selected(), nil
}
