package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/himanshusingh9554/edumateai/internal/llm"
	"github.com/himanshusingh9554/edumateai/internal/metrics"
	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/transcript"
)

const (
	maxModelAttempts  = 3
	modelRetryBackoff = 1500 * time.Millisecond
	modelCallTimeout  = 60 * time.Second

	// minAnswerChars is the shortest model response accepted as an answer.
	minAnswerChars = 10

	// DegradedAnswer is returned (and persisted) when every model attempt
	// fails. The request still succeeds with this as its answer text.
	DegradedAnswer = "Gemini is overloaded. Please try again shortly."
)

// ErrInvalidRequest signals a missing question or video URL. It is the only
// resolver error surfaced as a client fault.
var ErrInvalidRequest = errors.New("question and video URL are required")

// Collaborator contracts. The concrete repository, transcript, and llm types
// satisfy these; tests substitute fakes.
type videoStore interface {
	FindByURL(ctx context.Context, url string) (*model.Video, error)
	Create(ctx context.Context, url string, title, transcript, createdBy *string) (*model.Video, error)
	UpdateTranscript(ctx context.Context, id int64, transcript string) error
}

type questionStore interface {
	FindByVideoAndQuestion(ctx context.Context, videoID int64, question string) (*model.Question, error)
	Create(ctx context.Context, videoID int64, question, answer string, userID *string) (*model.Question, error)
	ListByVideo(ctx context.Context, videoID int64) ([]model.Question, error)
}

type activityRecorder interface {
	Record(ctx context.Context, userID string, videoID int64, question string)
}

type transcriptResolver interface {
	Resolve(ctx context.Context, videoID string) (transcript.Result, bool)
}

type audioExtractor interface {
	Extract(ctx context.Context, videoURL string) (string, func(), error)
}

type speechTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type metadataFetcher interface {
	Fetch(ctx context.Context, videoID, videoURL string) (*transcript.Metadata, error)
}

type answerCache interface {
	GetAnswer(ctx context.Context, videoURL, question string) (string, error)
	SetAnswer(ctx context.Context, videoURL, question, answer string) error
}

// AnswerService orchestrates the transcript-acquisition and answer-resolution
// pipeline: cache lookup, ordered transcript fallbacks, prompt assembly,
// model retries, and persistence.
type AnswerService struct {
	videos     videoStore
	questions  questionStore
	activities activityRecorder
	chain      transcriptResolver
	audio      audioExtractor
	speech     speechTranscriber
	meta       metadataFetcher
	cache      answerCache
	generator  llm.Generator
	log        zerolog.Logger

	primaryModel  string
	fallbackModel string
	sleep         func(time.Duration)
}

func NewAnswerService(
	videos videoStore,
	questions questionStore,
	activities activityRecorder,
	chain transcriptResolver,
	audio audioExtractor,
	speech speechTranscriber,
	meta metadataFetcher,
	cache answerCache,
	generator llm.Generator,
	log zerolog.Logger,
) *AnswerService {
	return &AnswerService{
		videos:        videos,
		questions:     questions,
		activities:    activities,
		chain:         chain,
		audio:         audio,
		speech:        speech,
		meta:          meta,
		cache:         cache,
		generator:     generator,
		log:           log,
		primaryModel:  llm.PrimaryModel,
		fallbackModel: llm.FallbackModel,
		sleep:         time.Sleep,
	}
}

// Resolve answers a question about a video. userID may be empty for
// anonymous callers. Apart from ErrInvalidRequest and persistence failures
// on the answer write, every internal failure degrades rather than errors:
// a well-formed request always gets a textual answer.
func (s *AnswerService) Resolve(ctx context.Context, question, videoURL, userID string) (*model.AskResponse, error) {
	if question == "" || videoURL == "" {
		return nil, ErrInvalidRequest
	}

	// Hot cache first. Identical key semantics to the durable lookup below,
	// so a hit here is exactly a hit there.
	if answer, err := s.cache.GetAnswer(ctx, videoURL, question); err == nil && answer != "" {
		metrics.Metrics.CacheHits.Inc()
		metrics.Metrics.QuestionsTotal.WithLabelValues("cached").Inc()
		return &model.AskResponse{Question: question, Answer: answer, Cached: true}, nil
	}

	video, err := s.videos.FindByURL(ctx, videoURL)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("video lookup: %w", err)
		}
		video = nil
	}

	if video != nil {
		cached, err := s.questions.FindByVideoAndQuestion(ctx, video.ID, question)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("question lookup: %w", err)
		}
		if cached != nil {
			metrics.Metrics.CacheHits.Inc()
			metrics.Metrics.QuestionsTotal.WithLabelValues("cached").Inc()
			if err := s.cache.SetAnswer(ctx, videoURL, question, cached.Answer); err != nil {
				s.log.Warn().Err(err).Msg("answer cache write failed")
			}
			return &model.AskResponse{Question: question, Answer: cached.Answer, Cached: true}, nil
		}
	}
	metrics.Metrics.CacheMisses.Inc()

	start := time.Now()
	promptContext, newTranscript := s.resolveContext(ctx, video, videoURL)

	video, err = s.ensureVideo(ctx, video, videoURL, newTranscript, userID)
	if err != nil {
		return nil, err
	}

	answer, degraded := s.generateAnswer(ctx, BuildPrompt(question, promptContext))

	var userRef *string
	if userID != "" {
		userRef = &userID
	}
	if _, err := s.questions.Create(ctx, video.ID, question, answer, userRef); err != nil {
		return nil, fmt.Errorf("persist answer: %w", err)
	}

	if err := s.cache.SetAnswer(ctx, videoURL, question, answer); err != nil {
		s.log.Warn().Err(err).Msg("answer cache write failed")
	}

	if userID != "" {
		s.activities.Record(ctx, userID, video.ID, question)
	}

	outcome := "answered"
	if degraded {
		outcome = "degraded"
	}
	metrics.Metrics.QuestionsTotal.WithLabelValues(outcome).Inc()
	metrics.Metrics.ResolveDuration.Observe(time.Since(start).Seconds())

	return &model.AskResponse{Question: question, Answer: answer, Cached: false}, nil
}

// resolveContext produces the prompt context for a video, running the
// fallback chain (captions, scraped captions, scrape fallback, audio
// speech-to-text, metadata) when the video has no cached transcript.
// newTranscript is non-empty only when a transcript was freshly obtained
// and should be persisted onto the video.
func (s *AnswerService) resolveContext(ctx context.Context, video *model.Video, videoURL string) (promptContext, newTranscript string) {
	if video != nil && video.Transcript != nil && *video.Transcript != "" {
		return BuildContext(*video.Transcript, ""), ""
	}

	videoID := transcript.ExtractVideoID(videoURL)

	if videoID != "" {
		if res, ok := s.chain.Resolve(ctx, videoID); ok {
			metrics.Metrics.TranscriptSource.WithLabelValues(string(res.Provenance)).Inc()
			return BuildContext(res.Text, res.Provenance), res.Text
		}

		if text := s.transcribeAudio(ctx, videoURL); text != "" {
			metrics.Metrics.TranscriptSource.WithLabelValues(string(transcript.ProvenanceSpeechToText)).Inc()
			return BuildContext(text, transcript.ProvenanceSpeechToText), text
		}
	}

	metrics.Metrics.TranscriptSource.WithLabelValues(string(transcript.ProvenanceNone)).Inc()
	if meta, err := s.meta.Fetch(ctx, videoID, videoURL); err == nil {
		return BuildMetadataContext(meta), ""
	}
	return BuildPlaceholderContext(videoURL), ""
}

// transcribeAudio runs the audio fallback: extract an audio artifact, send
// it for speech recognition, and always remove the artifact afterwards.
// Every failure is soft and yields "".
func (s *AnswerService) transcribeAudio(ctx context.Context, videoURL string) string {
	path, cleanup, err := s.audio.Extract(ctx, videoURL)
	defer cleanup()
	if err != nil {
		s.log.Warn().Err(err).Msg("audio extraction failed, trying metadata")
		return ""
	}

	text, err := s.speech.Transcribe(ctx, path)
	if err != nil {
		s.log.Warn().Err(err).Msg("speech-to-text failed, trying metadata")
		return ""
	}
	return text
}

// ensureVideo guarantees a video row exists, persisting a freshly obtained
// transcript along the way.
func (s *AnswerService) ensureVideo(ctx context.Context, video *model.Video, videoURL, newTranscript, userID string) (*model.Video, error) {
	if video == nil {
		var transcriptRef, userRef *string
		if newTranscript != "" {
			transcriptRef = &newTranscript
		}
		if userID != "" {
			userRef = &userID
		}
		created, err := s.videos.Create(ctx, videoURL, nil, transcriptRef, userRef)
		if err != nil {
			return nil, fmt.Errorf("persist video: %w", err)
		}
		return created, nil
	}

	if newTranscript != "" {
		if err := s.videos.UpdateTranscript(ctx, video.ID, newTranscript); err != nil {
			return nil, fmt.Errorf("persist transcript: %w", err)
		}
	}
	return video, nil
}

// generateAnswer calls the model with a bounded retry loop: attempts 1 and 2
// use the primary model, the final attempt the fallback model. A response is
// accepted only when longer than minAnswerChars. Backoff runs between failed
// attempts only. Exhaustion yields the degraded answer, never an error.
func (s *AnswerService) generateAnswer(ctx context.Context, prompt string) (answer string, degraded bool) {
	for attempt := 1; attempt <= maxModelAttempts; attempt++ {
		modelID := s.primaryModel
		if attempt == maxModelAttempts {
			modelID = s.fallbackModel
		}

		text, err := s.callModel(ctx, modelID, prompt)
		if err == nil && len(text) > minAnswerChars {
			metrics.Metrics.ModelAttempts.WithLabelValues(modelID, "ok").Inc()
			s.log.Info().Str("model", modelID).Int("attempt", attempt).Msg("model answered")
			return text, false
		}

		metrics.Metrics.ModelAttempts.WithLabelValues(modelID, "failed").Inc()
		s.log.Warn().
			Str("model", modelID).
			Int("attempt", attempt).
			Err(err).
			Msg("model attempt failed")

		if attempt < maxModelAttempts {
			s.sleep(modelRetryBackoff)
		}
	}
	return DegradedAnswer, true
}

func (s *AnswerService) callModel(ctx context.Context, modelID, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, modelCallTimeout)
	defer cancel()
	return s.generator.Generate(ctx, modelID, prompt)
}

// QuestionsForVideo returns the answered questions for a video, newest first.
func (s *AnswerService) QuestionsForVideo(ctx context.Context, videoID int64) ([]model.Question, error) {
	return s.questions.ListByVideo(ctx, videoID)
}
