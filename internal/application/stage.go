package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devbush/paralyze/internal/domain"
)

// ErrInternal marks failures outside the request error taxonomy, including
// recovered panics.
var ErrInternal = errors.New("internal error")

// Stage names one step of the analyze pipeline
type Stage string

const (
	StageValidate   Stage = "validate"
	StageAcquire    Stage = "acquire"
	StageExtract    Stage = "extract"
	StageTranscribe Stage = "transcribe"
	StageCount      Stage = "count"
	StageDone       Stage = "done"
)

// Stages lists the pipeline steps in execution order
var Stages = []Stage{StageValidate, StageAcquire, StageExtract, StageTranscribe, StageCount}

// StageError is the failure of one pipeline stage
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Message returns the single-line explanation shown to users
func (e *StageError) Message() string {
	err := e.Err
	switch {
	case errors.Is(err, domain.ErrMissingInput):
		return "Please upload a video or provide a URL."
	case errors.Is(err, domain.ErrNoValidTerms):
		return "Please provide at least one parasite word, comma separated."
	case errors.Is(err, domain.ErrInvalidModel):
		return fmt.Sprintf("Unknown model. Choose one of: %s.", strings.Join(domain.ModelKeys(), ", "))
	case errors.Is(err, domain.ErrInvalidURL):
		return "Invalid URL: " + detail(err, domain.ErrInvalidURL)
	case errors.Is(err, domain.ErrDownloadFailed):
		return "Error while downloading video: " + detail(err, domain.ErrDownloadFailed)
	case errors.Is(err, domain.ErrNoAudioTrack):
		return "Video has no audio track."
	case errors.Is(err, domain.ErrExtractionFailed):
		return "Error while extracting audio: " + detail(err, domain.ErrExtractionFailed)
	case errors.Is(err, domain.ErrTranscriptionFailed):
		return "Error while transcribing audio: " + detail(err, domain.ErrTranscriptionFailed)
	default:
		return fmt.Sprintf("Internal error during %s: %s", e.Stage, detail(err, ErrInternal))
	}
}

// IsRequestError reports whether the failure was caused by the request
// itself (bad input or bad media) rather than by this process.
func (e *StageError) IsRequestError() bool {
	for _, target := range []error{
		domain.ErrMissingInput,
		domain.ErrNoValidTerms,
		domain.ErrInvalidModel,
		domain.ErrInvalidURL,
		domain.ErrDownloadFailed,
		domain.ErrNoAudioTrack,
		domain.ErrExtractionFailed,
	} {
		if errors.Is(e.Err, target) {
			return true
		}
	}
	return false
}

// UserMessage converts any pipeline error into a single line
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Message()
	}
	return "Internal error: " + oneLine(err.Error())
}

// detail strips the sentinel prefix from err's text, leaving the cause
func detail(err error, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if idx := strings.Index(msg, prefix); idx >= 0 {
		msg = msg[idx+len(prefix):]
	}
	msg = oneLine(msg)
	if msg == "" || msg == sentinel.Error() {
		return "unknown error"
	}
	return msg
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
