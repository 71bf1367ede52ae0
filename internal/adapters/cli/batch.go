package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/devbush/paralyze/internal/adapters/cli/tui"
	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/domain"
)

var (
	batchFileFlag    string
	batchDirFlag     string
	batchConcurrency int
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files/urls...]",
		Short: "Analyze several videos",
		Long: `Analyze several videos concurrently with the same words and model.

Provide video files or URLs as arguments and/or via a file with --file.
The model is loaded once and shared by all runs. With --dir each report
is written to its own file; otherwise a summary table is printed.

Example:
  paralyze batch talk1.mp4 talk2.mp4 -w "um, uh"
  paralyze batch --file videos.txt --dir reports
  paralyze batch a.mp4 --file more.txt --concurrency 2`,
		RunE: runBatch,
	}

	f := cmd.Flags()
	f.StringVarP(&batchFileFlag, "file", "f", "", "File with paths/URLs (one per line)")
	f.StringVarP(&batchDirFlag, "dir", "d", "", "Write one report per video into this directory")
	f.IntVarP(&batchConcurrency, "concurrency", "c", 2, "Max concurrent analyses (max 16)")
	f.StringVarP(&wordsFlag, "words", "w", "", "Comma separated parasite words (default from config)")
	f.StringVarP(&modelFlag, "model", "m", "", "Model tier: tiny, base, small, medium (default from config)")
	f.StringVar(&formatFlag, "format", "", "Report format: text, json")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}
	if batchConcurrency > 16 {
		batchConcurrency = 16
	}

	sources, err := CollectInputs(args, batchFileFlag)
	if err != nil {
		return fmt.Errorf("failed to collect inputs: %w", err)
	}
	if len(sources) == 0 {
		return errors.New("no video files or URLs provided")
	}

	app, err := GetApp()
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	if batchDirFlag != "" {
		if err := os.MkdirAll(batchDirFlag, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	base := application.Request{
		Terms: firstNonEmpty(wordsFlag, app.Config.Defaults.Words),
		Model: firstNonEmpty(modelFlag, app.Config.Defaults.Model),
	}
	// Reject bad words or model once instead of once per video
	if _, err := domain.ParseTerms(base.Terms); err != nil {
		return errors.New(application.UserMessage(&application.StageError{Stage: application.StageValidate, Err: err}))
	}
	if _, err := domain.ParseModelKey(base.Model); err != nil {
		return errors.New(application.UserMessage(&application.StageError{Stage: application.StageValidate, Err: err}))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	quiet := quietFlag || !isTerminal(os.Stderr)
	summary := processBatch(ctx, app.Analyzer, sources, base, tui.NewBatchProgress(os.Stderr, len(sources), quiet))

	format := firstNonEmpty(formatFlag, app.Config.Defaults.Format)
	if batchDirFlag != "" {
		if err := writeBatchReports(summary, batchDirFlag, format); err != nil {
			return err
		}
		if !quietFlag {
			fmt.Fprintf(os.Stderr, "Wrote %d reports to %s\n", summary.Succeeded(), batchDirFlag)
		}
	} else {
		fmt.Println(renderTable(
			[]string{"Video", "Parasite words", "Status"},
			summary.Rows(),
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))
	}

	if failed := len(summary.FailedItems()); failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(summary.Items))
	}
	return nil
}

// processBatch analyzes every source with bounded concurrency. Items keep
// input order regardless of completion order.
func processBatch(ctx context.Context, analyzer *application.AnalyzeService, sources []domain.MediaSource, base application.Request, progress *tui.BatchProgress) *BatchSummary {
	summary := &BatchSummary{Items: make([]BatchItem, len(sources))}

	var g errgroup.Group
	g.SetLimit(batchConcurrency)

	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			req := base
			req.Source = src

			result, err := analyzer.Run(ctx, req)
			item := BatchItem{Source: src, Result: result, Err: err, Duration: time.Since(start)}
			summary.Items[i] = item

			line := tui.BatchResult{Source: src.String(), Success: item.Success(), Duration: item.Duration}
			if item.Success() {
				line.Total = result.Report.Total()
			} else {
				line.ErrMsg = application.UserMessage(err)
			}
			progress.AddResult(line)
			return nil
		})
	}
	_ = g.Wait()

	progress.Complete()
	return summary
}

func writeBatchReports(summary *BatchSummary, dir, format string) error {
	ext := "txt"
	if format == "json" {
		ext = "json"
	}
	for i, item := range summary.Items {
		if !item.Success() {
			continue
		}
		content, err := formatResult(item.Result, format, false)
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, reportName(i, item.Source, ext))
		if err := os.WriteFile(dest, []byte(content+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
