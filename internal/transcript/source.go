package transcript

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Provenance labels which strategy produced a transcript.
type Provenance string

const (
	ProvenanceCaptions        Provenance = "captions"
	ProvenanceScrapedCaptions Provenance = "scraped-captions"
	ProvenanceScrapeFallback  Provenance = "scrape-fallback"
	ProvenanceSpeechToText    Provenance = "speech-to-text"
	ProvenanceNone            Provenance = "none"
)

// Result is a resolved transcript plus its provenance. It is transient:
// only the text is ever persisted.
type Result struct {
	Text       string
	Provenance Provenance
}

// Source is one strategy for acquiring a transcript. Fetch returns the
// transcript text for a video ID or an error; an empty string with nil error
// also counts as a miss. The chain imposes the timeout via ctx.
type Source interface {
	Name() Provenance
	Fetch(ctx context.Context, videoID string) (string, error)
}

// DefaultSourceTimeout bounds each individual source attempt.
const DefaultSourceTimeout = 5 * time.Second

// Chain tries sources strictly in order and returns the first non-empty
// result. Source failures and timeouts are recovered locally: they move the
// chain to the next source, never up to the caller.
type Chain struct {
	sources []Source
	timeout time.Duration
	log     zerolog.Logger
}

func NewChain(log zerolog.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		timeout: DefaultSourceTimeout,
		log:     log,
	}
}

// WithTimeout overrides the per-source timeout (tests use a short one).
func (c *Chain) WithTimeout(d time.Duration) *Chain {
	c.timeout = d
	return c
}

// Resolve runs the fallback chain for a video ID. ok is false when every
// source missed; the caller then moves on to the audio fallback.
func (c *Chain) Resolve(ctx context.Context, videoID string) (Result, bool) {
	for _, src := range c.sources {
		text, err := c.fetchOne(ctx, src, videoID)
		if err != nil {
			c.log.Warn().
				Str("source", string(src.Name())).
				Str("video_id", videoID).
				Err(err).
				Msg("transcript source failed, trying next")
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		c.log.Info().
			Str("source", string(src.Name())).
			Str("video_id", videoID).
			Int("chars", len(text)).
			Msg("transcript resolved")
		return Result{Text: text, Provenance: src.Name()}, true
	}
	return Result{Provenance: ProvenanceNone}, false
}

func (c *Chain) fetchOne(ctx context.Context, src Source, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return src.Fetch(ctx, videoID)
}
