package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/himanshusingh9554/edumateai/internal/config"
	"github.com/himanshusingh9554/edumateai/internal/db"
	"github.com/himanshusingh9554/edumateai/internal/handler"
	"github.com/himanshusingh9554/edumateai/internal/llm"
	"github.com/himanshusingh9554/edumateai/internal/metrics"
	"github.com/himanshusingh9554/edumateai/internal/middleware"
	"github.com/himanshusingh9554/edumateai/internal/repository"
	"github.com/himanshusingh9554/edumateai/internal/router"
	"github.com/himanshusingh9554/edumateai/internal/service"
	"github.com/himanshusingh9554/edumateai/internal/transcript"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "edumate-api")
	logger := middleware.Logger

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("failed to create Gemini client: %v", err)
	}
	defer gemini.Close()

	metrics.Init(pool)

	// Transcript pipeline: ordered caption strategies, then the audio and
	// metadata fallbacks.
	httpClient := &http.Client{Timeout: 10 * time.Second}
	chain := transcript.NewChain(logger,
		transcript.NewCaptionSource(httpClient),
		transcript.NewScrapedCaptionSource(httpClient),
		transcript.NewScrapeFallbackSource(httpClient),
	)
	extractor := transcript.NewAudioExtractor(transcript.ExecRunner{}, cfg.AudioTempDir, logger)
	transcriber := transcript.NewTranscriber(cfg.WhisperAPIKey, cfg.WhisperAPIURL, logger)
	metaFetcher := transcript.NewMetadataFetcher(httpClient)
	searcher := transcript.NewVideoSearcher(httpClient)

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go transcript.NewAudioJanitor(cfg.AudioTempDir, logger).Start(janitorCtx)

	videoRepo := repository.NewVideoRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)

	activitySvc := service.NewActivityService(activityRepo, logger)
	answerSvc := service.NewAnswerService(
		videoRepo, questionRepo, activitySvc,
		chain, extractor, transcriber, metaFetcher,
		cache, gemini, logger,
	)
	videoSvc := service.NewVideoService(videoRepo, searcher)

	app := fiber.New(fiber.Config{
		AppName:      "EduMate AI API",
		ServerHeader: "EduMate",
	})

	router.Setup(app, &router.Handlers{
		Question: handler.NewQuestionHandler(answerSvc),
		Video:    handler.NewVideoHandler(videoSvc),
		Activity: handler.NewActivityHandler(activitySvc),
		Health:   handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	log.Printf("EduMate Go backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	log.Fatal(app.Listen(":" + cfg.Port))
}
