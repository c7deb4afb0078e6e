package transcript

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AudioJanitor periodically sweeps the audio temp directory for orphaned
// extraction artifacts. Extractions clean up after themselves, but a crash
// mid-pipeline can strand an mp3; the janitor removes anything older than
// maxAge on each tick.
type AudioJanitor struct {
	dir      string
	interval time.Duration
	maxAge   time.Duration
	log      zerolog.Logger
}

func NewAudioJanitor(dir string, log zerolog.Logger) *AudioJanitor {
	return &AudioJanitor{
		dir:      dir,
		interval: 10 * time.Minute,
		maxAge:   30 * time.Minute,
		log:      log,
	}
}

// Start runs the sweep loop until ctx is cancelled. A final sweep runs on
// shutdown.
func (j *AudioJanitor) Start(ctx context.Context) {
	j.log.Info().Str("dir", j.dir).Dur("interval", j.interval).Msg("audio janitor starting")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-ctx.Done():
			j.sweep()
			j.log.Info().Msg("audio janitor stopping")
			return
		}
	}
}

// sweep removes stale extraction artifacts. Only files matching the
// extractor's naming scheme are touched; anything else in the directory is
// left alone.
func (j *AudioJanitor) sweep() {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		j.log.Warn().Err(err).Str("dir", j.dir).Msg("audio janitor sweep failed")
		return
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isAudioArtifact(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.dir, e.Name())); err != nil {
			j.log.Warn().Err(err).Str("file", e.Name()).Msg("audio janitor remove failed")
			continue
		}
		removed++
	}

	if removed > 0 {
		j.log.Info().Int("removed", removed).Msg("audio janitor swept stale artifacts")
	}
}

func isAudioArtifact(name string) bool {
	return strings.HasPrefix(name, "temp_audio_") && strings.HasSuffix(name, ".mp3")
}
