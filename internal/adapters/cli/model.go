package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/devbush/paralyze/internal/domain"
	"github.com/devbush/paralyze/internal/ports"
)

// NewModelCmd creates the model subcommand
func NewModelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage Whisper models",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE:  runModelList,
	}

	downloadCmd := &cobra.Command{
		Use:   "download <model>",
		Short: "Download a model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelDownload,
	}

	removeCmd := &cobra.Command{
		Use:   "remove <model>",
		Short: "Remove a downloaded model",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelRemove,
	}

	cmd.AddCommand(listCmd, downloadCmd, removeCmd)
	return cmd
}

func modelManager() (*App, ports.ModelManager, error) {
	app, err := GetApp()
	if err != nil {
		return nil, nil, err
	}
	// Model files belong to the local engine even when another backend is selected
	return app, app.Whisper, nil
}

func runModelList(cmd *cobra.Command, args []string) error {
	app, models, err := modelManager()
	if err != nil {
		return err
	}

	var rows [][]string
	for _, m := range models.AvailableModels() {
		status := "not downloaded"
		if m.Downloaded {
			status = "downloaded"
		}
		if m.Name == app.Config.Defaults.Model {
			status += " (default)"
		}
		rows = append(rows, []string{m.Name, humanize.IBytes(uint64(m.Size)), m.Description, status})
	}

	fmt.Println(renderTable(
		[]string{"Model", "Size", "Description", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))

	if loaded := app.Registry.Loaded(); len(loaded) > 0 {
		fmt.Printf("Loaded in this process: %v\n", loaded)
	}
	return nil
}

func runModelDownload(cmd *cobra.Command, args []string) error {
	_, models, err := modelManager()
	if err != nil {
		return err
	}

	model, err := domain.ParseModelKey(args[0])
	if err != nil {
		return err
	}

	if models.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is already downloaded\n", model)
		return nil
	}

	fmt.Printf("Downloading model '%s'...\n", model)

	update, finish := byteProgress(os.Stderr, model, quietFlag)
	err = models.DownloadModel(cmd.Context(), model, update)
	finish()
	if err != nil {
		return err
	}

	fmt.Println("Model downloaded successfully")
	return nil
}

func runModelRemove(cmd *cobra.Command, args []string) error {
	_, models, err := modelManager()
	if err != nil {
		return err
	}

	model, err := domain.ParseModelKey(args[0])
	if err != nil {
		return err
	}

	if !models.IsModelDownloaded(model) {
		fmt.Printf("Model '%s' is not downloaded\n", model)
		return nil
	}

	if err := models.DeleteModel(model); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fmt.Printf("Model '%s' removed\n", model)
	return nil
}
