package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/himanshusingh9554/edumateai/internal/model"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// FindByURL returns the video with the exact URL string, or pgx.ErrNoRows.
// URLs are deliberately not normalized: youtu.be and youtube.com forms of the
// same video are separate rows with independent transcripts.
func (r *VideoRepo) FindByURL(ctx context.Context, url string) (*model.Video, error) {
	query := `
		SELECT id, url, title, transcript, created_by, created_at, updated_at
		FROM videos
		WHERE url = $1`

	var v model.Video
	err := r.pool.QueryRow(ctx, query, url).Scan(
		&v.ID, &v.URL, &v.Title, &v.Transcript, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new video row and returns it.
func (r *VideoRepo) Create(ctx context.Context, url string, title, transcript, createdBy *string) (*model.Video, error) {
	query := `
		INSERT INTO videos (url, title, transcript, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, url, title, transcript, created_by, created_at, updated_at`

	var v model.Video
	err := r.pool.QueryRow(ctx, query, url, title, transcript, createdBy).Scan(
		&v.ID, &v.URL, &v.Title, &v.Transcript, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateTranscript stores a newly resolved transcript on an existing video.
func (r *VideoRepo) UpdateTranscript(ctx context.Context, id int64, transcript string) error {
	query := `
		UPDATE videos
		SET transcript = $2, updated_at = now()
		WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, id, transcript)
	return err
}

// ListRecent returns the most recently added videos, newest first.
func (r *VideoRepo) ListRecent(ctx context.Context, limit int) ([]model.Video, error) {
	query := `
		SELECT id, url, title, transcript, created_by, created_at, updated_at
		FROM videos
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		var v model.Video
		err := rows.Scan(&v.ID, &v.URL, &v.Title, &v.Transcript, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
