// Package fetcher wraps the external yt-dlp binary behind a single media
// fetcher capability: validate a URL, fetch its information record, and
// materialize the media (plus sidecar files) to disk.
package fetcher

import (
	"io"

	"clip-archiver/internal/model"
	"clip-archiver/internal/urls"
)

type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// Options configures a fetcher instance for one output directory.
type Options struct {
	OutputDir     string
	Quality       string
	ExtractAudio  bool
	WriteSidecars bool
	LogWriter     io.Writer
	EchoOutput    bool
	Progress      func(stream OutputStream, line string)
}

// Fetcher is the media fetcher capability the orchestrator consumes. All
// implementations satisfy the full interface; there is no optional-method
// probing.
type Fetcher interface {
	// ValidateURL reports whether the URL belongs to this fetcher's
	// platform and is structurally sound.
	ValidateURL(url string) bool
	// FetchInfo returns the item's information record without writing
	// anything to disk.
	FetchInfo(url string) (model.InfoRecord, error)
	// Download writes the media (and sidecars when configured) under the
	// output directory using the given yt-dlp output template.
	Download(url, outputTemplate string) error
}

// New selects the fetcher implementation for a platform. TikTok gets the
// tuned variant; everything else the generic one.
func New(platform string, opts Options) Fetcher {
	if urls.NormalizePlatform(platform) == urls.PlatformTikTok {
		return &TikTok{Generic: Generic{opts: opts, platform: urls.PlatformTikTok}}
	}
	return &Generic{opts: opts, platform: urls.NormalizePlatform(platform)}
}
