package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/himanshusingh9554/edumateai/internal/model"
	"github.com/himanshusingh9554/edumateai/internal/transcript"
)

const (
	defaultVideoListLimit = 50

	searchResultsPerPage = 10
	// searchFetchDepth is how many raw hits are pulled per page of depth;
	// filtering discards shorts and sub-minute clips, so fetch generously.
	searchFetchDepth = 50
	// minSearchSeconds excludes clips too short to ask questions about.
	minSearchSeconds = 90
)

type videoCatalog interface {
	FindByURL(ctx context.Context, url string) (*model.Video, error)
	Create(ctx context.Context, url string, title, transcript, createdBy *string) (*model.Video, error)
	ListRecent(ctx context.Context, limit int) ([]model.Video, error)
}

type videoSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]transcript.SearchHit, error)
}

type VideoService struct {
	repo     videoCatalog
	searcher videoSearcher
}

func NewVideoService(repo videoCatalog, searcher videoSearcher) *VideoService {
	return &VideoService{repo: repo, searcher: searcher}
}

// Add registers a video, optionally with a caller-supplied title and
// transcript. Adds are idempotent per URL: re-adding an existing URL returns
// the existing row untouched, keeping at most one row per URL string.
// created reports whether a new row was inserted.
func (s *VideoService) Add(ctx context.Context, req model.AddVideoRequest, createdBy string) (video *model.Video, created bool, err error) {
	existing, err := s.repo.FindByURL(ctx, req.URL)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("video lookup: %w", err)
	}

	var userRef *string
	if createdBy != "" {
		userRef = &createdBy
	}
	v, err := s.repo.Create(ctx, req.URL, req.Title, req.Transcript, userRef)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// List returns recently added videos, newest first.
func (s *VideoService) List(ctx context.Context) ([]model.Video, error) {
	return s.repo.ListRecent(ctx, defaultVideoListLimit)
}

// Search finds YouTube videos for a query, filtered to askable content and
// paginated. Shorts and clips under minSearchSeconds are dropped before
// paging, so page boundaries are stable for a given result set.
func (s *VideoService) Search(ctx context.Context, query string, page int) (*model.SearchResponse, error) {
	if page < 1 {
		page = 1
	}

	hits, err := s.searcher.Search(ctx, query, searchFetchDepth*page)
	if err != nil {
		return nil, fmt.Errorf("video search: %w", err)
	}

	var results []model.SearchResult
	for _, h := range hits {
		if !askable(h) {
			continue
		}
		channel := h.Channel
		if channel == "" {
			channel = "Unknown Channel"
		}
		results = append(results, model.SearchResult{
			VideoID:   h.VideoID,
			Title:     h.Title,
			Thumbnail: h.Thumbnail,
			Duration:  h.Duration,
			Views:     h.Views,
			Channel:   channel,
		})
	}

	start := (page - 1) * searchResultsPerPage
	if start >= len(results) {
		return &model.SearchResponse{Results: []model.SearchResult{}}, nil
	}

	end := start + searchResultsPerPage
	if end > len(results) {
		end = len(results)
	}

	resp := &model.SearchResponse{Results: results[start:end]}
	if len(results) > end {
		next := page + 1
		resp.NextPage = &next
	}
	return resp, nil
}

// askable filters out hits the answer pipeline can't do anything useful
// with: shorts and clips too brief to carry a transcript worth asking about.
func askable(h transcript.SearchHit) bool {
	if h.Duration == "" {
		return false
	}
	if strings.Contains(strings.ToLower(h.Title), "shorts") {
		return false
	}
	return durationSeconds(h.Duration) > minSearchSeconds
}

// durationSeconds parses a clock-style duration ("1:02:37", "12:34") into
// seconds. Unparseable segments count as zero.
func durationSeconds(d string) int {
	parts := strings.Split(d, ":")
	secs := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			n = 0
		}
		secs = secs*60 + n
	}
	return secs
}
