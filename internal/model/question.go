package model

import "time"

// Question is a persisted question/answer pair for a video. Rows are
// immutable once created and double as the answer cache: the existence of a
// row for (video, question text) short-circuits the resolution pipeline.
type Question struct {
	ID        int64     `json:"id"`
	VideoID   int64     `json:"videoId"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AskRequest is the body of POST /api/questions/ask.
type AskRequest struct {
	Question string `json:"question"`
	VideoURL string `json:"videoUrl"`
}

// AskResponse is the reply to POST /api/questions/ask. Cached is true when
// the answer came from a previously persisted question/answer pair.
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Cached   bool   `json:"cached"`
}
