package domain

import "errors"

var (
	// Input errors
	ErrMissingInput = errors.New("missing input")
	ErrNoValidTerms = errors.New("no valid parasite words")
	ErrInvalidURL   = errors.New("invalid URL")

	// Acquisition errors
	ErrDownloadFailed = errors.New("download failed")

	// Extraction errors
	ErrNoAudioTrack     = errors.New("video has no audio track")
	ErrExtractionFailed = errors.New("audio extraction failed")

	// Transcription errors
	ErrInvalidModel        = errors.New("invalid model")
	ErrModelNotFound       = errors.New("model not found")
	ErrTranscriptionFailed = errors.New("transcription failed")

	// Dependency errors
	ErrFFmpegNotFound  = errors.New("ffmpeg not found")
	ErrWhisperNotFound = errors.New("whisper binary not found")
	ErrYtDlpNotFound   = errors.New("yt-dlp not found")
)
