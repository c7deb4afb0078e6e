package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/himanshusingh9554/edumateai/internal/model"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

// Create records that a user asked a question about a video.
func (r *ActivityRepo) Create(ctx context.Context, userID string, videoID int64, question string) error {
	query := `
		INSERT INTO activities (user_id, video_id, question)
		VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, userID, videoID, question)
	return err
}

// ListRecentByUser returns the user's most recent activity per distinct
// video, newest first.
func (r *ActivityRepo) ListRecentByUser(ctx context.Context, userID string, limit int) ([]model.ActivityEntry, error) {
	query := `
		SELECT id, user_id, video_id, question, created_at, url, title
		FROM (
			SELECT DISTINCT ON (a.video_id)
			       a.id, a.user_id, a.video_id, a.question, a.created_at,
			       v.url, v.title
			FROM activities a
			JOIN videos v ON v.id = a.video_id
			WHERE a.user_id = $1
			ORDER BY a.video_id, a.created_at DESC
		) latest
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ActivityEntry
	for rows.Next() {
		var e model.ActivityEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.VideoID, &e.Question, &e.CreatedAt, &e.VideoURL, &e.VideoTitle)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
