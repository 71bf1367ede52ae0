package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devbush/paralyze/internal/adapters/cli/tui"
	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/domain"
)

var (
	// Global flags
	logLevelFlag string
	backendFlag  string
	fetcherFlag  string
	languageFlag string
	quietFlag    bool

	// Analyze flags
	urlFlag           string
	wordsFlag         string
	modelFlag         string
	formatFlag        string
	outputFlag        string
	transcriptOutFlag string

	// serving switches the default log level to the configured one
	serving bool
)

var stageLabels = map[application.Stage]string{
	application.StageValidate:   "Checking input",
	application.StageAcquire:    "Acquiring video",
	application.StageExtract:    "Extracting audio",
	application.StageTranscribe: "Transcribing",
	application.StageCount:      "Counting words",
}

func globalAppOptions() AppOptions {
	level := logLevelFlag
	if level == "" && !serving {
		level = "warn"
	}
	return AppOptions{
		LogLevel: level,
		Backend:  backendFlag,
		Fetcher:  fetcherFlag,
		Language: languageFlag,
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paralyze [video-file|url]",
		Short: "Count filler words in a video",
		Long: `paralyze transcribes the audio track of a video and counts how often
each parasite word ("um", "like", "you know") is spoken.

Provide a local video file or an http(s) URL. Run without arguments in a
terminal to be prompted for the video, the words and the model.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&backendFlag, "backend", "", "Transcription backend: whisper, openai")
	pf.StringVar(&fetcherFlag, "fetcher", "", "Remote video fetcher: http, ytdlp")
	pf.StringVarP(&languageFlag, "language", "l", "", "Spoken language code (auto, en, fr, ...)")
	pf.BoolVarP(&quietFlag, "quiet", "q", false, "Suppress progress output")

	addAnalyzeFlags(rootCmd)

	rootCmd.AddCommand(NewBatchCmd())
	rootCmd.AddCommand(NewModelCmd())
	rootCmd.AddCommand(NewDepsCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

func addAnalyzeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&urlFlag, "url", "", "Video URL (used when no file is given)")
	f.StringVarP(&wordsFlag, "words", "w", "", "Comma separated parasite words (default from config)")
	f.StringVarP(&modelFlag, "model", "m", "", "Model tier: tiny, base, small, medium (default from config)")
	f.StringVar(&formatFlag, "format", "", "Output format: text, json")
	f.StringVarP(&outputFlag, "output", "o", "", "Write the report to a file")
	f.StringVar(&transcriptOutFlag, "transcript-out", "", "Also save the transcript (.srt for subtitles, anything else for text)")
}

func runRoot(cmd *cobra.Command, args []string) error {
	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	req := application.Request{
		URL:   urlFlag,
		Terms: firstNonEmpty(wordsFlag, app.Config.Defaults.Words),
		Model: firstNonEmpty(modelFlag, app.Config.Defaults.Model),
	}
	if len(args) == 1 {
		if domain.LooksLikeURL(args[0]) {
			req.URL = args[0]
		} else {
			req.File = args[0]
		}
	}

	if req.File == "" && req.URL == "" && isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		interactive, ok, err := promptRequest(app, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled")
			return nil
		}
		req = interactive
	}

	return runAnalyze(cmd.Context(), app, req)
}

// promptRequest asks for the video, the words and the model
func promptRequest(app *App, in io.Reader, out io.Writer) (application.Request, bool, error) {
	fmt.Fprint(out, "Video file or URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return application.Request{}, false, err
	}
	source := strings.TrimSpace(line)
	if source == "" {
		return application.Request{}, false, nil
	}

	var req application.Request
	if domain.LooksLikeURL(source) {
		req.URL = source
	} else {
		req.File = source
	}

	terms := append([]string{}, tui.CommonFillers...)
	if wordsFlag != "" {
		terms = mergeTerms(terms, wordsFlag)
	}
	selected, err := tui.RunTermPicker(terms, firstNonEmpty(wordsFlag, app.Config.Defaults.Words))
	if err != nil {
		return application.Request{}, false, err
	}
	if selected == nil {
		return application.Request{}, false, nil
	}
	req.Terms = strings.Join(selected, ", ")

	req.Model = firstNonEmpty(modelFlag, app.Config.Defaults.Model)
	if models := app.Models(); models != nil && modelFlag == "" {
		model, err := tui.RunModelPicker(models.AvailableModels(), req.Model)
		if err != nil {
			return application.Request{}, false, err
		}
		if model == "" {
			return application.Request{}, false, nil
		}
		req.Model = model
	}

	return req, true, nil
}

// mergeTerms appends the comma separated extra terms not already listed
func mergeTerms(terms []string, extra string) []string {
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		seen[domain.FoldTerm(t)] = true
	}
	for _, t := range strings.Split(extra, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[domain.FoldTerm(t)] {
			continue
		}
		seen[domain.FoldTerm(t)] = true
		terms = append(terms, t)
	}
	return terms
}

func runAnalyze(ctx context.Context, app *App, req application.Request) error {
	if ctx == nil {
		ctx = context.Background()
	}

	steps := make([]string, len(application.Stages))
	index := make(map[application.Stage]int, len(application.Stages))
	for i, stage := range application.Stages {
		steps[i] = stageLabels[stage]
		index[stage] = i
	}

	quiet := quietFlag || !isTerminal(os.Stderr)
	progress := tui.NewProgressDisplay(os.Stderr, steps, quiet)
	req.Observer = func(_ string, stage application.Stage) {
		if i, ok := index[stage]; ok {
			progress.Advance(i)
			return
		}
		progress.Finish()
	}
	req.Progress = progress.UpdateProgress

	var spinnerDone chan struct{}
	if !quiet {
		spinnerDone = progress.StartSpinner()
	}
	result, err := app.Analyzer.Run(ctx, req)
	if spinnerDone != nil {
		close(spinnerDone)
	}
	if err != nil {
		progress.Fail(application.UserMessage(err))
		if errors.Is(err, context.Canceled) {
			return err
		}
		return errors.New(application.UserMessage(err))
	}

	if transcriptOutFlag != "" {
		if err := writeTranscript(transcriptOutFlag, result.Transcript); err != nil {
			return err
		}
	}

	return outputResult(result, firstNonEmpty(formatFlag, app.Config.Defaults.Format))
}

func writeTranscript(path string, transcript *domain.Transcript) error {
	content := transcript.ToText()
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		content = transcript.ToSRT()
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

func formatResult(result *application.Result, format string, pretty bool) (string, error) {
	switch format {
	case "", "text":
		if pretty {
			return tui.RenderReport(result.Report, result.Terms, result.Model), nil
		}
		return result.Text(), nil
	case "json":
		data, err := json.MarshalIndent(result.Summary(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}

func outputResult(result *application.Result, format string) error {
	pretty := outputFlag == "" && isTerminal(os.Stdout)
	output, err := formatResult(result, format, pretty)
	if err != nil {
		return err
	}

	if outputFlag != "" {
		return os.WriteFile(outputFlag, []byte(output+"\n"), 0644)
	}

	fmt.Println(output)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
