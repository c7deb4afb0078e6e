package model

import "time"

// Video identifies a video by its canonical URL and carries the cached
// transcript once one has been resolved. At most one row exists per distinct
// URL string; lookup is by exact URL, not by extracted video ID.
type Video struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Title      *string   `json:"title,omitempty"`
	Transcript *string   `json:"transcript,omitempty"`
	CreatedBy  *string   `json:"createdBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AddVideoRequest is the body of POST /api/videos.
type AddVideoRequest struct {
	URL        string  `json:"url"`
	Title      *string `json:"title,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
}

// SearchResult is one YouTube search hit, not persisted.
type SearchResult struct {
	VideoID   string `json:"videoId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
	Views     string `json:"views"`
	Channel   string `json:"channel"`
}

// SearchResponse is the reply to GET /api/videos/search/:query. NextPage is
// nil on the last page.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	NextPage *int           `json:"nextPage"`
}
