package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	checkedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	uncheckedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// CommonFillers are offered by the interactive word picker
var CommonFillers = []string{"um", "uh", "like", "you know", "so", "basically", "actually", "literally", "I mean", "kind of"}

// TermOption is one entry of the word picker
type TermOption struct {
	Term    string
	Checked bool
}

// TermPickerModel is the bubbletea model for choosing parasite words
type TermPickerModel struct {
	options []TermOption
	cursor  int
	done    bool
}

// NewTermPickerModel preselects the terms found in defaults (comma separated)
func NewTermPickerModel(terms []string, defaults string) TermPickerModel {
	checked := make(map[string]bool)
	for _, d := range strings.Split(defaults, ",") {
		checked[strings.ToLower(strings.TrimSpace(d))] = true
	}

	options := make([]TermOption, len(terms))
	for i, term := range terms {
		options[i] = TermOption{Term: term, Checked: checked[strings.ToLower(term)]}
	}
	return TermPickerModel{options: options}
}

func (m TermPickerModel) Init() tea.Cmd {
	return nil
}

func (m TermPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case " ", "x":
			m.options[m.cursor].Checked = !m.options[m.cursor].Checked
		case "a":
			for i := range m.options {
				m.options[i].Checked = true
			}
		case "n":
			for i := range m.options {
				m.options[i].Checked = false
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			m.done = false
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m TermPickerModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Which parasite words should be counted?"))
	sb.WriteString("\n\n")

	for i, opt := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		checkbox := "[ ]"
		style := uncheckedStyle
		if opt.Checked {
			checkbox = "[x]"
			style = checkedStyle
		}

		sb.WriteString(style.Render(fmt.Sprintf("%s%s %s", cursor, checkbox, opt.Term)))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\n%d selected | space=toggle, a=all, n=none, enter=confirm, q=cancel\n", len(m.Selected())))
	return sb.String()
}

// Selected returns the checked terms in display order
func (m TermPickerModel) Selected() []string {
	var result []string
	for _, opt := range m.options {
		if opt.Checked {
			result = append(result, opt.Term)
		}
	}
	return result
}

// Cancelled returns true if the user cancelled
func (m TermPickerModel) Cancelled() bool {
	return !m.done
}

// RunTermPicker shows the word picker. It returns the checked terms, or
// nil when cancelled.
func RunTermPicker(terms []string, defaults string) ([]string, error) {
	p := tea.NewProgram(NewTermPickerModel(terms, defaults))

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	result := finalModel.(TermPickerModel)
	if result.Cancelled() {
		return nil, nil
	}
	return result.Selected(), nil
}
