package transcript

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// MinSpeechChars is the shortest transcription treated as usable speech.
// Anything shorter is discarded so near-empty transcripts never end up
// cached on the video.
const MinSpeechChars = 10

// Transcriber converts an audio artifact to text through a Whisper-style
// transcription API.
type Transcriber struct {
	client *openai.Client
	log    zerolog.Logger
}

// NewTranscriber builds a Transcriber. baseURL selects an OpenAI-compatible
// endpoint; empty means the default OpenAI API.
func NewTranscriber(apiKey, baseURL string, log zerolog.Logger) *Transcriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Transcriber{client: openai.NewClientWithConfig(cfg), log: log}
}

// Transcribe sends the audio file for transcription and returns the text.
// A result below MinSpeechChars comes back as "" with a nil error: no usable
// speech is a miss, not a failure. Transport errors are returned for the
// caller to log; the pipeline treats them as the same miss.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: "en",
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if len(text) < MinSpeechChars {
		t.log.Warn().Str("path", audioPath).Int("chars", len(text)).Msg("no usable speech in audio")
		return "", nil
	}
	return text, nil
}
