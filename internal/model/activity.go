package model

import "time"

// Activity records that a user asked a question about a video. Writes are
// best-effort: a failed insert never fails the answer that triggered it.
type Activity struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   int64     `json:"videoId"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityEntry is an activity row joined with its video for history views.
type ActivityEntry struct {
	Activity
	VideoURL   string  `json:"videoUrl"`
	VideoTitle *string `json:"videoTitle,omitempty"`
}
