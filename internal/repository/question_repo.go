package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/himanshusingh9554/edumateai/internal/model"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

// FindByVideoAndQuestion looks up a previously answered question for a video.
// The match is on the exact question string, case-sensitive, so semantically
// identical but textually distinct questions are misses. Returns pgx.ErrNoRows
// when no pair exists.
func (r *QuestionRepo) FindByVideoAndQuestion(ctx context.Context, videoID int64, question string) (*model.Question, error) {
	query := `
		SELECT id, video_id, question, answer, user_id, created_at
		FROM questions
		WHERE video_id = $1 AND question = $2
		ORDER BY created_at ASC
		LIMIT 1`

	var q model.Question
	err := r.pool.QueryRow(ctx, query, videoID, question).Scan(
		&q.ID, &q.VideoID, &q.Question, &q.Answer, &q.UserID, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create persists a new question/answer pair. Rows are never updated after
// this insert.
func (r *QuestionRepo) Create(ctx context.Context, videoID int64, question, answer string, userID *string) (*model.Question, error) {
	query := `
		INSERT INTO questions (video_id, question, answer, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, video_id, question, answer, user_id, created_at`

	var q model.Question
	err := r.pool.QueryRow(ctx, query, videoID, question, answer, userID).Scan(
		&q.ID, &q.VideoID, &q.Question, &q.Answer, &q.UserID, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByVideo returns all question/answer pairs for a video, newest first.
func (r *QuestionRepo) ListByVideo(ctx context.Context, videoID int64) ([]model.Question, error) {
	query := `
		SELECT id, video_id, question, answer, user_id, created_at
		FROM questions
		WHERE video_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		err := rows.Scan(&q.ID, &q.VideoID, &q.Question, &q.Answer, &q.UserID, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
