package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestTermPicker_Defaults(t *testing.T) {
	m := NewTermPickerModel([]string{"um", "uh", "like", "so"}, "Um, like")

	got := m.Selected()
	if len(got) != 2 || got[0] != "um" || got[1] != "like" {
		t.Errorf("Selected() = %v, want [um like]", got)
	}
}

func TestTermPicker_Toggle(t *testing.T) {
	var m tea.Model = NewTermPickerModel([]string{"um", "uh", "like"}, "um")

	m = press(m, "down", " ", "enter")
	picker := m.(TermPickerModel)

	if picker.Cancelled() {
		t.Fatal("enter should confirm")
	}
	got := picker.Selected()
	if len(got) != 2 || got[1] != "uh" {
		t.Errorf("Selected() = %v, want [um uh]", got)
	}
}

func TestTermPicker_Cancel(t *testing.T) {
	var m tea.Model = NewTermPickerModel(CommonFillers, "um")
	m = press(m, "q")

	if !m.(TermPickerModel).Cancelled() {
		t.Error("q should cancel")
	}
}

func TestMenu_InitialCursor(t *testing.T) {
	options := []MenuOption{{Label: "tiny", Value: "tiny"}, {Label: "small", Value: "small"}, {Label: "medium", Value: "medium"}}

	var m tea.Model = NewMenuModel("Pick", options, "small")
	m = press(m, "down", "enter")

	if got := m.(MenuModel).Selected(); got != "medium" {
		t.Errorf("Selected() = %q, want medium", got)
	}
}
