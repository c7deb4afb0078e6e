package transcript

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AudioTimeout is the hard wall-clock bound on one audio extraction.
const AudioTimeout = 180 * time.Second

// CommandRunner executes an external command. Split out so extractor tests
// can stand in for yt-dlp.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// AudioExtractor downloads a video's audio track to a transient local file
// via yt-dlp. Artifact names include a per-invocation UUID so concurrent
// requests for the same video never collide.
type AudioExtractor struct {
	runner  CommandRunner
	dir     string
	timeout time.Duration
	log     zerolog.Logger
}

func NewAudioExtractor(runner CommandRunner, dir string, log zerolog.Logger) *AudioExtractor {
	return &AudioExtractor{
		runner:  runner,
		dir:     dir,
		timeout: AudioTimeout,
		log:     log,
	}
}

// WithTimeout overrides the extraction timeout (tests use a short one).
func (e *AudioExtractor) WithTimeout(d time.Duration) *AudioExtractor {
	e.timeout = d
	return e
}

// Extract obtains an mp3 for the video and returns its path plus a cleanup
// func that removes the artifact. cleanup is non-nil and safe to call even
// when Extract fails, so callers can defer it unconditionally. Any failure
// (timeout, yt-dlp error, missing output file) is reported as an error with
// the partial artifact already removed.
func (e *AudioExtractor) Extract(ctx context.Context, videoURL string) (string, func(), error) {
	videoID := ExtractVideoID(videoURL)
	if videoID == "" {
		videoID = "unknown"
	}
	outputPath := filepath.Join(e.dir, fmt.Sprintf("temp_audio_%s_%s.mp3", videoID, uuid.NewString()))
	cleanup := func() { os.Remove(outputPath) }

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.runner.Run(ctx, "yt-dlp",
		"-x",
		"--audio-format", "mp3",
		"-o", outputPath,
		videoURL,
	)
	if err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("extract audio: %w", err)
	}

	if _, statErr := os.Stat(outputPath); statErr != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("extract audio: no output artifact: %w", statErr)
	}

	e.log.Info().Str("video_id", videoID).Str("path", outputPath).Msg("audio extracted")
	return outputPath, cleanup, nil
}
