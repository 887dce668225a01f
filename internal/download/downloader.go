package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/domain"
)

// Downloader defines the interface for fetching one link to one local file.
type Downloader interface {
	// Download stores link at a freshly allocated path and returns that path.
	// The caller owns the file and must remove it.
	Download(ctx context.Context, link string, quality domain.Quality) (string, error)
}

// PathAllocator hands out destination paths and removes them.
type PathAllocator interface {
	Allocate() string
	Remove(path string) error
}

// Recorder receives download outcomes.
type Recorder interface {
	RecordDownload(quality string, d time.Duration, err error)
}

// DownloadError wraps any failure reported by the extractor.
type DownloadError struct {
	Link  string
	Cause error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.Link, e.Cause)
}

func (e *DownloadError) Unwrap() error {
	return e.Cause
}

// formats maps each preference to a yt-dlp format selector.
var formats = map[domain.Quality]string{
	domain.QualityBest:   "best",
	domain.QualityMedium: "best[height<=480]",
	domain.QualityLow:    "best[height<=240]",
}

// FormatFor returns the yt-dlp format selector for q. Unknown values select "best".
func FormatFor(q domain.Quality) string {
	if f, ok := formats[q]; ok {
		return f
	}
	return formats[domain.QualityBest]
}

// fetchFunc runs the extractor for a single link.
type fetchFunc func(ctx context.Context, link, format, output string) error

// YtdlpDownloader implements Downloader with the yt-dlp executable.
type YtdlpDownloader struct {
	paths    PathAllocator
	log      logrus.FieldLogger
	recorder Recorder
	fetch    fetchFunc
}

// Option configures a YtdlpDownloader.
type Option func(*YtdlpDownloader)

// WithExecutable runs a specific yt-dlp binary instead of the one on PATH.
func WithExecutable(path string) Option {
	return func(d *YtdlpDownloader) {
		if path == "" {
			return
		}
		d.fetch = ytdlpFetch(path)
	}
}

// WithRecorder reports every download outcome to r.
func WithRecorder(r Recorder) Option {
	return func(d *YtdlpDownloader) {
		d.recorder = r
	}
}

// NewYtdlpDownloader creates a downloader writing into paths allocated by paths.
func NewYtdlpDownloader(paths PathAllocator, logger logrus.FieldLogger, opts ...Option) *YtdlpDownloader {
	d := &YtdlpDownloader{
		paths: paths,
		log:   logger.WithField("component", "downloader"),
		fetch: ytdlpFetch(""),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches link with the format selected by quality. It never retries.
func (d *YtdlpDownloader) Download(ctx context.Context, link string, quality domain.Quality) (path string, err error) {
	format := FormatFor(quality)
	// Reserve the destination before the extractor runs so concurrent
	// requests can never write into the same file.
	output := d.paths.Allocate()
	log := d.log.WithFields(logrus.Fields{
		"url":     link,
		"format":  format,
		"quality": quality.String(),
		"output":  output,
	})
	log.Info("Starting download")

	start := time.Now()
	defer func() {
		if d.recorder != nil {
			d.recorder.RecordDownload(quality.String(), time.Since(start), err)
		}
	}()

	// --- Extractor Run ---
	if err = d.fetch(ctx, link, format, output); err != nil {
		log.WithError(err).Error("Error downloading video")
		d.discard(output, log)
		return "", &DownloadError{Link: link, Cause: err}
	}

	// --- Output Check ---
	// yt-dlp can exit cleanly without producing a file (e.g. the post has no
	// playable stream), so make sure there is something to hand back.
	if _, statErr := os.Stat(output); statErr != nil {
		log.WithError(statErr).Error("Extractor finished without writing the output file")
		d.discard(output, log)
		return "", &DownloadError{Link: link, Cause: fmt.Errorf("no output file: %w", statErr)}
	}

	log.WithField("duration", time.Since(start).String()).Info("Download finished")
	return output, nil
}

// discard removes output and anything yt-dlp left next to it
// (<output>.part, <output>.part-Frag1, <output>.ytdl, ...).
func (d *YtdlpDownloader) discard(output string, log logrus.FieldLogger) {
	leftovers, err := filepath.Glob(output + ".*")
	if err != nil {
		// Only a malformed pattern errors here; still try the main file.
		log.WithError(err).Warn("Failed to list partial files")
	}
	for _, p := range append([]string{output}, leftovers...) {
		if rmErr := d.paths.Remove(p); rmErr != nil {
			log.WithError(rmErr).WithField("path", p).Warn("Failed to remove partial download")
		}
	}
}

// IsDownloadError reports whether err came from the extractor.
func IsDownloadError(err error) bool {
	var de *DownloadError
	return errors.As(err, &de)
}

func ytdlpFetch(executable string) fetchFunc {
	return func(ctx context.Context, link, format, output string) error {
		cmd := ytdlp.New().
			Format(format).
			Output(output).
			// Write straight to output instead of output.part, so a
			// failed run leaves at most one file behind.
			NoPart().
			NoPlaylist().
			NoWarnings().
			Quiet()
		if executable != "" {
			cmd = cmd.SetExecutable(executable)
		}
		_, err := cmd.Run(ctx, link)
		return err
	}
}

// Install downloads a yt-dlp binary into the go-ytdlp cache when none is available.
func Install(ctx context.Context, logger logrus.FieldLogger) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"executable": resolved.Executable,
		"version":    resolved.Version,
	}).Info("yt-dlp available")
	return nil
}
