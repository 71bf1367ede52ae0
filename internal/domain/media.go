package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// SourceKind tells which variant of a MediaSource is populated
type SourceKind int

const (
	SourceLocal SourceKind = iota + 1
	SourceRemote
)

func (k SourceKind) String() string {
	switch k {
	case SourceLocal:
		return "local"
	case SourceRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// MediaSource is either a local file path or a remote URL, never both.
// The zero value is invalid; build one with LocalSource, RemoteSource or ParseMediaSource.
type MediaSource struct {
	kind  SourceKind
	value string
}

// LocalSource builds a MediaSource for a file already on disk
func LocalSource(path string) MediaSource {
	return MediaSource{kind: SourceLocal, value: path}
}

// RemoteSource builds a MediaSource for a URL that must be downloaded
func RemoteSource(rawURL string) MediaSource {
	return MediaSource{kind: SourceRemote, value: rawURL}
}

// Kind returns the populated variant
func (s MediaSource) Kind() SourceKind { return s.kind }

// Path returns the local path, or "" for remote sources
func (s MediaSource) Path() string {
	if s.kind != SourceLocal {
		return ""
	}
	return s.value
}

// URL returns the remote URL, or "" for local sources
func (s MediaSource) URL() string {
	if s.kind != SourceRemote {
		return ""
	}
	return s.value
}

// IsZero reports whether no variant is populated
func (s MediaSource) IsZero() bool {
	return s.kind == 0 || strings.TrimSpace(s.value) == ""
}

func (s MediaSource) String() string {
	if s.IsZero() {
		return "<none>"
	}
	return s.value
}

// ParseMediaSource normalizes the optional file and URL inputs of a request.
// A local file takes precedence when both are given.
func ParseMediaSource(file, rawURL string) (MediaSource, error) {
	file = strings.TrimSpace(file)
	rawURL = strings.TrimSpace(rawURL)

	switch {
	case file != "":
		return LocalSource(file), nil
	case rawURL != "":
		return RemoteSource(rawURL), nil
	default:
		return MediaSource{}, fmt.Errorf("%w: provide a video file or a URL", ErrMissingInput)
	}
}

// LooksLikeURL reports whether a positional argument should be treated as a URL
// rather than a file path.
func LooksLikeURL(input string) bool {
	input = strings.TrimSpace(input)
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// ValidateRemoteURL checks that rawURL is absolute with both a scheme and a host.
func ValidateRemoteURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, rawURL)
	}
	return u, nil
}
