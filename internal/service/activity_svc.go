package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/repository"
)

const defaultHistoryLimit = 100

// ActivityService records and serves per-user question history. Writes are
// best-effort post-commit hooks: a failed insert is logged and swallowed so
// it can never fail the answer that triggered it.
type ActivityService struct {
	repo *repository.ActivityRepo
	log  zerolog.Logger
}

func NewActivityService(repo *repository.ActivityRepo, log zerolog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// Record notes that a user asked a question about a video.
func (s *ActivityService) Record(ctx context.Context, userID string, videoID int64, question string) {
	if err := s.repo.Create(ctx, userID, videoID, question); err != nil {
		s.log.Warn().
			Err(err).
			Int64("video_id", videoID).
			Msg("activity write failed")
	}
}

// RecentByUser returns the user's latest activity per distinct video.
func (s *ActivityService) RecentByUser(ctx context.Context, userID string) ([]model.ActivityEntry, error) {
	return s.repo.ListRecentByUser(ctx, userID, defaultHistoryLimit)
}
