package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewDepsCmd creates the deps subcommand
func NewDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Inspect and manage external tools",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show dependency status",
		RunE:  runDepsStatus,
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update yt-dlp to latest version",
		RunE:  runDepsUpdate,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install yt-dlp",
		RunE:  runDepsInstall,
	}

	cmd.AddCommand(statusCmd, updateCmd, installCmd)
	return cmd
}

func toolStatus(path string) string {
	if path == "" {
		return "not found"
	}
	return "installed"
}

func runDepsStatus(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	ffmpegPath := app.Extractor.FFmpegPath()
	ffprobePath := app.Extractor.FFprobePath()
	whisperPath := app.Whisper.BinaryPath()
	ytdlpPath := app.YtDlp.GetBinaryPath()

	rows := [][]string{
		{"ffmpeg", toolStatus(ffmpegPath), ffmpegPath},
		{"ffprobe", toolStatus(ffprobePath), ffprobePath},
		{"whisper.cpp", toolStatus(whisperPath), whisperPath},
		{"yt-dlp", toolStatus(ytdlpPath), ytdlpPath},
	}

	models := app.Whisper.AvailableModels()
	downloaded := 0
	for _, m := range models {
		if m.Downloaded {
			downloaded++
		}
	}
	rows = append(rows, []string{"models", fmt.Sprintf("%d/%d downloaded", downloaded, len(models)), ""})

	fmt.Println(renderTable(
		[]string{"Dependency", "Status", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	fmt.Printf("Transcription backend: %s\n", app.Engine.Name())
	fmt.Printf("Remote fetcher: %s\n", app.Fetcher.Name())

	return nil
}

func runDepsUpdate(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	if !app.YtDlp.IsAvailable() {
		return fmt.Errorf("yt-dlp is not installed. Run 'paralyze deps install' first")
	}

	fmt.Println("Updating yt-dlp...")

	if err := app.YtDlp.Update(cmd.Context()); err != nil {
		return err
	}

	fmt.Println("yt-dlp updated")
	return nil
}

func runDepsInstall(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return err
	}

	if app.YtDlp.IsAvailable() {
		fmt.Println("yt-dlp is already installed")
		return nil
	}

	fmt.Println("Installing yt-dlp...")

	update, finish := byteProgress(os.Stderr, "yt-dlp", quietFlag)
	err = app.YtDlp.Install(cmd.Context(), update)
	finish()
	if err != nil {
		return err
	}

	fmt.Println("yt-dlp installed")
	return nil
}
