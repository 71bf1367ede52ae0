package cli

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/devbush/paralyze/internal/application"
	"github.com/devbush/paralyze/internal/domain"
)

// BatchItem is the outcome of one source in a batch run
type BatchItem struct {
	Source   domain.MediaSource
	Result   *application.Result
	Err      error
	Duration time.Duration
}

// Success reports whether the source was analyzed
func (i BatchItem) Success() bool {
	return i.Err == nil && i.Result != nil
}

// BatchSummary aggregates results from a batch run, in input order
type BatchSummary struct {
	Items []BatchItem
}

// Succeeded returns the number of analyzed sources
func (s *BatchSummary) Succeeded() int {
	n := 0
	for _, item := range s.Items {
		if item.Success() {
			n++
		}
	}
	return n
}

// FailedItems returns only the failed items
func (s *BatchSummary) FailedItems() []BatchItem {
	var failed []BatchItem
	for _, item := range s.Items {
		if !item.Success() {
			failed = append(failed, item)
		}
	}
	return failed
}

// Rows renders one table row per source
func (s *BatchSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Success() {
			rows = append(rows, []string{item.Source.String(), fmt.Sprint(item.Result.Report.Total()), "ok"})
			continue
		}
		rows = append(rows, []string{item.Source.String(), "-", application.UserMessage(item.Err)})
	}
	return rows
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// reportName derives the report file name for the index-th source
func reportName(index int, src domain.MediaSource, ext string) string {
	base := ""
	switch src.Kind() {
	case domain.SourceLocal:
		base = filepath.Base(src.Path())
		base = strings.TrimSuffix(base, filepath.Ext(base))
	case domain.SourceRemote:
		if u, err := url.Parse(src.URL()); err == nil {
			base = path.Base(u.Path)
			base = strings.TrimSuffix(base, path.Ext(base))
			if base == "/" || base == "." || base == "" {
				base = u.Hostname()
			}
		}
	}
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_")
	if base == "" {
		base = "video"
	}
	return fmt.Sprintf("%03d-%s.%s", index+1, base, ext)
}
