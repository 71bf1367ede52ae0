package tui

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/devbush/paralyze/internal/ports"
)

// ModelOptions turns the model catalogue into menu entries
func ModelOptions(models []ports.ModelInfo, defaultModel string) []MenuOption {
	options := make([]MenuOption, 0, len(models))
	for _, m := range models {
		hint := fmt.Sprintf("%-8s %s", humanize.IBytes(uint64(m.Size)), m.Description)
		if m.Downloaded {
			hint += " [downloaded]"
		}
		label := m.Name
		if m.Name == defaultModel {
			label += " (default)"
		}
		options = append(options, MenuOption{Label: label, Hint: hint, Value: m.Name})
	}
	return options
}

// RunModelPicker asks which model tier to use
func RunModelPicker(models []ports.ModelInfo, defaultModel string) (string, error) {
	return RunMenu("Which Whisper model?", ModelOptions(models, defaultModel), defaultModel)
}
